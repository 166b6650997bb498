package service

import "github.com/hcc-raf-server/internal/domain"

const communityNewEnrollee = "New Enrollee"

// ClassifyCommunity summarises enrollment recency, dual status and disability
// status. New enrollment wins outright; partial-benefit dual status takes
// precedence over full-benefit.
func ClassifyCommunity(d domain.Demographics) string {
	if d.NewEnrollee {
		return communityNewEnrollee
	}

	dual := DualAliasNone
	switch {
	case d.PartialBenefitDual:
		dual = DualAliasPartial
	case d.FullBenefitDual:
		dual = DualAliasFull
	}

	segment := "Aged"
	if d.Disabled {
		segment = "Disabled"
	}

	return "Community, " + dual + ", " + segment
}
