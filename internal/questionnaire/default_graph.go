package questionnaire

// CountryList backs the passport-country dropdown. Values are the labels
// themselves; the step carries no branch edges.
var CountryList = []string{
	"Afghanistan", "Albania", "Algeria", "Andorra", "Angola", "Argentina", "Armenia", "Australia",
	"Austria", "Azerbaijan", "Bahrain", "Bangladesh", "Belarus", "Belgium", "Bolivia", "Bosnia and Herzegovina",
	"Brazil", "Brunei", "Bulgaria", "Cambodia", "Cameroon", "Canada", "Chad", "Chile", "China",
	"Colombia", "Congo", "Costa Rica", "Croatia", "Cuba", "Cyprus", "Czech Republic", "Denmark",
	"Dominican Republic", "Ecuador", "Egypt", "El Salvador", "Estonia", "Ethiopia", "Fiji", "Finland",
	"France", "Georgia", "Germany", "Ghana", "Greece", "Guatemala", "Haiti", "Honduras", "Hong Kong",
	"Hungary", "Iceland", "India", "Indonesia", "Iran", "Iraq", "Ireland", "Israel", "Italy",
	"Jamaica", "Japan", "Jordan", "Kazakhstan", "Kenya", "Kuwait", "Kyrgyzstan", "Laos", "Latvia",
	"Lebanon", "Libya", "Lithuania", "Luxembourg", "Malaysia", "Maldives", "Malta", "Mexico",
	"Moldova", "Mongolia", "Montenegro", "Morocco", "Mozambique", "Myanmar", "Nepal", "Netherlands",
	"New Zealand", "Nicaragua", "Nigeria", "North Macedonia", "Norway", "Oman", "Pakistan", "Palestine",
	"Panama", "Paraguay", "Peru", "Philippines", "Poland", "Portugal", "Qatar", "Romania", "Russia",
	"Rwanda", "Saudi Arabia", "Senegal", "Serbia", "Singapore", "Slovakia", "Slovenia", "Somalia",
	"South Africa", "South Korea", "Spain", "Sri Lanka", "Sudan", "Sweden", "Switzerland", "Syria",
	"Taiwan", "Tajikistan", "Tanzania", "Thailand", "Tunisia", "Turkey", "Turkmenistan", "UAE",
	"Uganda", "Ukraine", "United Kingdom", "United States", "Uruguay", "Uzbekistan", "Venezuela",
	"Vietnam", "Yemen", "Zambia", "Zimbabwe",
}

func countryOptions() []Option {
	opts := make([]Option, len(CountryList))
	for i, c := range CountryList {
		opts[i] = Option{Label: c, Value: c}
	}
	return opts
}

// DefaultGraph is the production intake questionnaire. The graph is plain
// configuration; deployments with a different flow construct their own
// graph and hand it to the engine unchanged.
func DefaultGraph() *Graph {
	return MustGraph([]Question{
		{
			ID:          "treatment_category",
			Kind:        KindSingleChoice,
			Prompt:      "What type of treatment are you looking for?",
			Description: "Select the category that best matches your needs.",
			Required:    true,
			Options: []Option{
				{Label: "Physiotherapy", Value: "physiotherapy"},
				{Label: "Oncology / Treatment & Surgery", Value: "oncology"},
				{Label: "Cardiac / Heart Surgery", Value: "cardiac"},
				{Label: "Orthopedics (Joint / Spine)", Value: "orthopedics"},
				{Label: "Eye Surgery / Ophthalmology", Value: "ophthalmology"},
				{Label: "Dental Care", Value: "dental"},
				{Label: "Fertility / IVF", Value: "fertility"},
				{Label: "Neurology / Brain Surgery", Value: "neurology"},
				{Label: "Cosmetic / Plastic Surgery", Value: "cosmetic"},
				{Label: "Other / Not Sure", Value: "other"},
			},
		},
		{
			ID:          "urgency",
			Kind:        KindSingleChoice,
			Prompt:      "How urgently do you need treatment?",
			Description: "This helps us prioritize and find the best options.",
			Required:    true,
			Options: []Option{
				{Label: "Within 1 month", Value: "1_month"},
				{Label: "Within 3 months", Value: "3_months"},
				{Label: "Within 6 months", Value: "6_months"},
				{Label: "Within 9 months", Value: "9_months"},
				{Label: "Just exploring options", Value: "exploring"},
			},
		},
		{
			ID:       "previous_diagnosis",
			Kind:     KindSingleChoice,
			Prompt:   "Have you received a diagnosis from a doctor?",
			Required: true,
			Options: []Option{
				{Label: "Yes, I have a formal diagnosis", Value: "yes", NextQuestionID: "diagnosis_details"},
				{Label: "I have symptoms but no diagnosis", Value: "symptoms", NextQuestionID: "allergies_conditions"},
				{Label: "I need a second opinion", Value: "second_opinion", NextQuestionID: "diagnosis_details"},
			},
		},
		{
			ID:               "diagnosis_details",
			Kind:             KindFreeText,
			Prompt:           "Please describe your diagnosis or condition.",
			Description:      "Include any specific details from your doctor's assessment. You can also upload a prescription or medical report.",
			Placeholder:      "e.g., Torn ACL requiring reconstruction, diagnosed March 2026...",
			Required:         true,
			AllowsAttachment: true,
		},
		{
			ID:          "allergies_conditions",
			Kind:        KindMultiChoice,
			Prompt:      "Do you have any known allergies or chronic conditions?",
			Description: "Select all that apply.",
			Options: []Option{
				{Label: "Diabetes", Value: "diabetes"},
				{Label: "Hypothyroidism / Hyperthyroidism", Value: "thyroidism_issue"},
				{Label: "Hypertension", Value: "hypertension"},
				{Label: "Heart / Cardiovascular issues", Value: "heart_issues"},
				{Label: "Respiratory / Asthma", Value: "respiratory_issue"},
				{Label: "Drug / Medication allergies", Value: "drug_allergies"},
				{Label: "None of the above", Value: "none"},
			},
		},
		{
			ID:          "destination_preference",
			Kind:        KindMultiChoice,
			Prompt:      "Do you have a preferred destination?",
			Description: "Select all regions you'd consider for treatment.",
			Options: []Option{
				{Label: "India", Value: "india"},
				{Label: "Thailand", Value: "thailand"},
				{Label: "Hong Kong", Value: "hong_kong"},
				{Label: "Turkey (Coming Soon)", Value: "turkey"},
				{Label: "Mexico (Coming Soon)", Value: "mexico"},
				{Label: "Germany (Coming Soon)", Value: "germany"},
				{Label: "South Korea (Coming Soon)", Value: "south_korea"},
				{Label: "No preference", Value: "no_preference"},
			},
		},
		{
			ID:     "budget",
			Kind:   KindSingleChoice,
			Prompt: "What's your approximate budget?",
			Options: []Option{
				{Label: "Under $5,000", Value: "under_5k"},
				{Label: "$5,000 - $15,000", Value: "5k_15k"},
				{Label: "$15,000 - $30,000", Value: "15k_30k"},
				{Label: "$30,000+", Value: "30k_plus"},
				{Label: "Not sure yet", Value: "unsure"},
			},
		},
		{
			ID:          "passport_country",
			Kind:        KindDropdown,
			Prompt:      "Do you require a medical visa?",
			Description: "Select the country of your travel document (passport).",
			Placeholder: "Select your passport country",
			Required:    true,
			Options:     countryOptions(),
		},
		{
			ID:          "translation_language",
			Kind:        KindDropdown,
			Prompt:      "Do you need translation services?",
			Description: "Translation between your language and English. Select your preferred language of conversation.",
			Placeholder: "Select your preferred language",
			Options: []Option{
				{Label: "Arabic", Value: "arabic"},
				{Label: "Persian", Value: "persian"},
				{Label: "Dari / Afghani", Value: "afghani"},
				{Label: "Urdu", Value: "urdu"},
				{Label: "Nepali", Value: "nepali"},
				{Label: "Bengali", Value: "bengali"},
				{Label: "Polish", Value: "polish"},
				{Label: "Russian", Value: "russian"},
				{Label: "Cantonese", Value: "cantonese"},
				{Label: "Japanese", Value: "japanese"},
				{Label: "Not required (I speak English)", Value: "not_required"},
			},
		},
		{
			ID:          "virtual_consultation",
			Kind:        KindDropdown,
			Prompt:      "Would you like a virtual consultation with the surgeon/doctor before you confirm?",
			Description: "A video call with the treating doctor to discuss your case.",
			Placeholder: "Select an option",
			Required:    true,
			Options: []Option{
				{Label: "Yes, I'd like a virtual consultation", Value: "yes"},
				{Label: "Not required", Value: "not_required"},
				{Label: "I'll decide later", Value: "decide_later"},
			},
		},
		{
			ID:          "mobile",
			Kind:        KindPhone,
			Prompt:      "Would you like us to contact you via WhatsApp/direct call?",
			Description: "Enter your number with country code (e.g. +971551234567). We will get in touch for urgent updates.",
			Placeholder: "+971551234567 (Optional)",
		},
		{
			ID:          "personal_details",
			Kind:        KindPersonalDetails,
			Prompt:      "Almost done! Tell us about yourself.",
			Description: "This helps us personalise your treatment quotes.",
			Required:    true,
		},
	})
}
