package registry

// CMS-HCC V28 normalization factor for payment year 2025. CMS publishes a new factor
// with each annual rate announcement; it compensates for diagnosis coding intensity so
// scores stay comparable with earlier years.
const (
	v28NormFactor2025       = 1.045
	v28NormFactorSource2025 = "CMS 2025 Rate Announcement, CMS-HCC V28 normalization factor"
)

// v28InternalInteractionMarkers identify the engine's Medicaid/dual-status interaction
// terms (MCAID_*, NMCAID_*), which exist only to select coefficients internally.
var v28InternalInteractionMarkers = []string{"MCAID"}

var v28Profile = &Profile{
	Model:                      "CMS-HCC Model V28",
	Year:                       2025,
	NormFactor:                 v28NormFactor2025,
	NormFactorSource:           v28NormFactorSource2025,
	ExcludedInteractionMarkers: v28InternalInteractionMarkers,
	Labels:                     NewLabelRegistry(v28ConditionLabels, v28InteractionLabels, v28DemographicLabels),
}

var v28ConditionLabels = map[string]string{
	"1":   "HIV/AIDS",
	"2":   "Septicemia, Systemic Inflammatory Response Syndrome/Shock",
	"6":   "Opportunistic Infections",
	"17":  "Cancer Metastatic to Lung, Liver, Brain, and Other Organs; Acute Myeloid Leukemia Except Promyelocytic",
	"18":  "Cancer Metastatic to Bone; Other and Unspecified Metastatic Cancer; Acute Leukemia Except Myeloid",
	"19":  "Myelodysplastic Syndromes, Multiple Myeloma, and Other Cancers",
	"20":  "Lung and Other Severe Cancers",
	"21":  "Lymphoma and Other Cancers",
	"22":  "Bladder, Colorectal, and Other Cancers",
	"23":  "Prostate, Breast, and Other Cancers",
	"35":  "Pancreas Transplant Status",
	"37":  "Diabetes with Severe Acute Complications",
	"38":  "Diabetes with Glycemic, Unspecified, or No Complications",
	"48":  "Morbid Obesity",
	"49":  "Specified Lysosomal Storage Disease",
	"50":  "Amyloidosis, Porphyria, and Other Specified Metabolic Disorders",
	"51":  "Addison's and Cushing's Diseases, Acromegaly, and Other Specified Endocrine Disorders",
	"62":  "Liver Transplant Status/Complications",
	"63":  "Chronic Liver Failure/End-Stage Liver Disorders",
	"64":  "Cirrhosis of Liver",
	"65":  "Chronic Hepatitis",
	"68":  "Cholangitis and Obstruction of Bile Duct Without Gallstones",
	"77":  "Intestine Transplant Status/Complications",
	"78":  "Intestinal Obstruction/Perforation",
	"79":  "Chronic Pancreatitis",
	"80":  "Crohn's Disease (Regional Enteritis)",
	"81":  "Ulcerative Colitis",
	"92":  "Bone/Joint/Muscle/Severe Soft Tissue Infections/Necrosis",
	"93":  "Rheumatoid Arthritis and Other Specified Inflammatory Rheumatic Disorders",
	"94":  "Systemic Lupus Erythematosus and Other Specified Systemic Connective Tissue Disorders",
	"107": "Sickle Cell Anemia (Hb-SS) and Thalassemia Beta Zero",
	"108": "Sickle Cell Anemia (Hb-SS) and Thalassemia Beta Zero; Beta Thalassemia Major",
	"109": "Acquired Hemolytic, Aplastic, and Sideroblastic Anemias",
	"111": "Hemophilia, Male",
	"112": "Immune Thrombocytopenia and Specified Coagulation Defects and Hemorrhagic Conditions",
	"114": "Common Variable and Combined Immunodeficiencies",
	"115": "Specified Immunodeficiencies and White Blood Cell Disorders",
	"125": "Dementia, Severe",
	"126": "Dementia, Moderate",
	"127": "Dementia, Mild or Unspecified",
	"135": "Drug Use with Psychotic Complications",
	"136": "Alcohol Use with Psychotic Complications",
	"137": "Drug Use Disorder, Moderate/Severe, or Drug Use with Non-Psychotic Complications",
	"138": "Drug Use Disorder, Mild, Uncomplicated, Except Cannabis",
	"139": "Alcohol Use Disorder, Moderate/Severe, or Alcohol Use with Specified Nonpsychotic Complication",
	"151": "Schizophrenia",
	"152": "Psychosis, Except Schizophrenia",
	"153": "Personality Disorders; Anorexia/Bulimia Nervosa",
	"154": "Bipolar Disorders without Psychosis",
	"155": "Major Depression, Moderate or Severe, without Psychosis",
	"180": "Quadriplegia",
	"181": "Paraplegia",
	"182": "Spinal Cord Disorders/Injuries",
	"190": "Amyotrophic Lateral Sclerosis and Other Motor Neuron Disease, Spinal Muscular Atrophy",
	"191": "Quadriplegic Cerebral Palsy",
	"192": "Cerebral Palsy, Except Quadriplegic",
	"193": "Chronic Inflammatory Demyelinating Polyneuritis and Multifocal Motor Neuropathy",
	"195": "Myasthenia Gravis with (Acute) Exacerbation",
	"196": "Myasthenia Gravis without (Acute) Exacerbation and Other Myoneural Disorders",
	"197": "Muscular Dystrophy",
	"198": "Multiple Sclerosis",
	"199": "Parkinson and Other Degenerative Disease of Basal Ganglia",
	"200": "Friedreich and Other Hereditary Ataxias; Huntington Disease",
	"201": "Seizure Disorders and Convulsions",
	"202": "Coma, Brain Compression/Anoxic Damage",
	"211": "Respirator Dependence/Tracheostomy Status/Complications",
	"212": "Respiratory Arrest",
	"213": "Cardio-Respiratory Failure and Shock",
	"221": "Heart Transplant Status/Complications",
	"222": "End-Stage Heart Failure",
	"223": "Heart Failure with Heart Assist Device/Artificial Heart",
	"224": "Acute on Chronic Heart Failure",
	"225": "Acute Heart Failure (Excludes Acute on Chronic)",
	"226": "Heart Failure, Except Endstage and Acute",
	"227": "Cardiomyopathy/Myocarditis",
	"228": "Acute Myocardial Infarction",
	"229": "Unstable Angina and Other Acute Ischemic Heart Disease",
	"238": "Specified Heart Arrhythmias",
	"248": "Intracranial Hemorrhage",
	"249": "Ischemic or Unspecified Stroke",
	"253": "Hemiplegia/Hemiparesis",
	"254": "Monoplegia, Other Paralytic Syndromes",
	"263": "Atherosclerosis of Arteries of the Extremities with Ulceration or Gangrene",
	"264": "Vascular Disease with Complications",
	"267": "Deep Vein Thrombosis and Pulmonary Embolism",
	"276": "Lung Transplant Status/Complications",
	"277": "Cystic Fibrosis",
	"278": "Idiopathic Pulmonary Fibrosis and Lung Involvement in Systemic Sclerosis",
	"279": "Severe Persistent Asthma",
	"280": "Chronic Obstructive Pulmonary Disease, Interstitial Lung Disorders, and Other Chronic Lung Disorders",
	"282": "Aspiration and Specified Bacterial Pneumonias",
	"283": "Empyema, Lung Abscess",
	"298": "Severe Diabetic Eye Disease, Retinal Vein Occlusion, and Vitreous Hemorrhage",
	"300": "Exudative Macular Degeneration",
	"326": "Chronic Kidney Disease, Stage 5",
	"327": "Chronic Kidney Disease, Severe (Stage 4)",
	"328": "Chronic Kidney Disease, Moderate (Stage 3B)",
	"329": "Chronic Kidney Disease, Moderate (Stage 3, Except 3B)",
	"379": "Pressure Ulcer of Skin with Necrosis Through to Muscle, Tendon, or Bone",
	"380": "Chronic Ulcer of Skin, Except Pressure, Through to Bone or Muscle",
	"381": "Pressure Ulcer of Skin with Full Thickness Skin Loss",
	"382": "Pressure Ulcer of Skin with Partial Thickness Skin Loss",
	"383": "Chronic Ulcer of Skin, Except Pressure, Not Specified as Through to Bone or Muscle",
	"385": "Severe Skin Burn",
	"387": "Pemphigus, Pemphigoid, and Other Specified Autoimmune Skin Disorders",
	"397": "Major Head Injury with Loss of Consciousness > 1 Hour",
	"398": "Major Head Injury with Loss of Consciousness < 1 Hour or Unspecified",
	"399": "Major Head Injury without Loss of Consciousness",
	"401": "Vertebral Fractures without Spinal Cord Injury",
	"402": "Hip Fracture/Dislocation",
	"405": "Traumatic Amputations and Complications",
	"409": "Amputation Status, Lower Limb/Amputation Complications",
	"454": "Stem Cell, Including Bone Marrow, Transplant Status/Complications",
	"463": "Artificial Openings for Feeding or Elimination",
}

var v28InteractionLabels = map[string]string{
	"DIABETES_HF_V28":             "Diabetes with Heart Failure",
	"HF_CHR_LUNG_V28":             "Heart Failure with Chronic Lung Disease",
	"HF_KIDNEY_V28":               "Heart Failure with Chronic Kidney Disease",
	"CHR_LUNG_CARD_RESP_FAIL_V28": "Chronic Lung Disease with Cardiac or Respiratory Failure",
	"HF_HCC238_V28":               "Heart Failure with HCC238",
	"gSubUseDisorder_gPsych_V28":  "Substance Use Disorder with Psychosis",
	"D1":                          "One payable HCC",
	"D2":                          "Two payable HCCs",
	"D3":                          "Three payable HCCs",
	"D4":                          "Four payable HCCs",
	"D5":                          "Five payable HCCs",
	"D6":                          "Six payable HCCs",
	"D7":                          "Seven payable HCCs",
	"D8":                          "Eight payable HCCs",
	"D9":                          "Nine payable HCCs",
	"D10P":                        "Ten or more payable HCCs",
	"OriginallyDisabled_Male":     "Originally Disabled Male",
	"OriginallyDisabled_Female":   "Originally Disabled Female",
}

// v28DemographicLabels covers the age/sex buckets and the boolean demographic flags
var v28DemographicLabels = map[string]string{
	"F0_34":         "Female, Age 0-34",
	"F35_44":        "Female, Age 35-44",
	"F45_54":        "Female, Age 45-54",
	"F55_59":        "Female, Age 55-59",
	"F60_64":        "Female, Age 60-64",
	"F65_69":        "Female, Age 65-69",
	"F70_74":        "Female, Age 70-74",
	"F75_79":        "Female, Age 75-79",
	"F80_84":        "Female, Age 80-84",
	"F85_89":        "Female, Age 85-89",
	"F90_94":        "Female, Age 90-94",
	"F95_GT":        "Female, Age 95+",
	"M0_34":         "Male, Age 0-34",
	"M35_44":        "Male, Age 35-44",
	"M45_54":        "Male, Age 45-54",
	"M55_59":        "Male, Age 55-59",
	"M60_64":        "Male, Age 60-64",
	"M65_69":        "Male, Age 65-69",
	"M70_74":        "Male, Age 70-74",
	"M75_79":        "Male, Age 75-79",
	"M80_84":        "Male, Age 80-84",
	"M85_89":        "Male, Age 85-89",
	"M90_94":        "Male, Age 90-94",
	"M95_GT":        "Male, Age 95+",
	"new_enrollee":  "New Enrollee",
	"snp":           "Special Needs Plan",
	"low_income":    "Low Income",
	"non_aged":      "Non-Aged",
	"orig_disabled": "Originally Disabled",
	"disabled":      "Disabled",
	"esrd":          "End-Stage Renal Disease",
	"lti":           "Long-Term Institutional",
	"fbd":           "Full Benefit Dual",
	"pbd":           "Partial Benefit Dual",
}
