package catalog

// Default returns the built-in 45Q eligibility questionnaire. The order is
// load-bearing: sessions walk it strictly front to back.
func Default() *Catalog {
	c, err := New([]Question{
		{
			ID:       "facility_name",
			Prompt:   "What is the name of your facility/project?",
			Type:     TypeText,
			Required: true,
			HelpText: "Enter the official name of your facility or project",
		},
		{
			ID:       "location_city",
			Prompt:   "What city is your project located in?",
			Type:     TypeText,
			Required: true,
		},
		{
			ID:       "location_state",
			Prompt:   "What state is your project located in?",
			Type:     TypeText,
			Required: true,
		},
		{
			ID:       "facility_type",
			Prompt:   "What type of facility is this?",
			Type:     TypeSingleSelect,
			Required: true,
			Choices: []string{
				"Electric generation facility",
				"Industrial facility (cement, steel, chemicals, etc.)",
				"Direct air capture facility",
				"Other",
			},
			HelpText: "Select the primary type of facility",
		},
		{
			ID:       "ownership",
			Prompt:   "Who owns the facility?",
			Type:     TypeSingleSelect,
			Required: true,
			Choices: []string{
				"You (the taxpayer)",
				"Your client",
				"A third party",
			},
		},
		{
			ID:       "technology_ownership",
			Prompt:   "Who owns the carbon capture technology?",
			Type:     TypeSingleSelect,
			Required: true,
			Choices: []string{
				"You (the taxpayer)",
				"Licensed from another party",
				"Owned by a third party",
			},
		},
		{
			ID:       "capture_method",
			Prompt:   "What method is used to capture CO2?",
			Type:     TypeSingleSelect,
			Required: true,
			Choices: []string{
				"Post-combustion capture",
				"Pre-combustion capture",
				"Oxy-fuel combustion",
				"Direct air capture",
				"Other",
			},
		},
		{
			ID:       "annual_co2_captured",
			Prompt:   "How much CO2 do you capture annually (in metric tons)?",
			Type:     TypeNumber,
			Required: true,
			HelpText: "Enter the estimated annual CO2 capture in metric tons",
		},
		{
			ID:       "capture_efficiency",
			Prompt:   "What is the capture efficiency percentage?",
			Type:     TypeNumber,
			HelpText: "Enter the percentage of CO2 captured from the total emissions",
		},
		{
			ID:       "facility_construction_date",
			Prompt:   "When was the facility originally constructed? (YYYY-MM-DD)",
			Type:     TypeText,
			HelpText: "Enter the date when the facility was first constructed",
		},
		{
			ID:       "carbon_capture_operation_date",
			Prompt:   "When did/will carbon capture operations begin? (YYYY-MM-DD)",
			Type:     TypeText,
			Required: true,
			HelpText: "Enter the date when carbon capture operations started or will start",
		},
		{
			ID:       "sequestration_method",
			Prompt:   "How is the captured CO2 sequestered?",
			Type:     TypeSingleSelect,
			Required: true,
			Choices: []string{
				"Geologic storage (underground injection)",
				"Enhanced oil recovery (EOR)",
				"Utilization in products",
				"Other",
			},
		},
		{
			ID:       "sequestration_location",
			Prompt:   "Where is the CO2 sequestered?",
			Type:     TypeText,
			Required: true,
			HelpText: "Describe the location where CO2 is stored or utilized",
		},
		{
			ID:       "domestic_content",
			Prompt:   "What percentage of the facility components are manufactured in the US?",
			Type:     TypeNumber,
			HelpText: "Enter the percentage of domestic content (0-100)",
		},
		{
			ID:       "energy_community",
			Prompt:   "Is the facility located in an energy community?",
			Type:     TypeBoolean,
			HelpText: "Energy communities include areas with coal mine/plant closures or high unemployment",
		},
	})
	if err != nil {
		// The built-in catalog is validated by tests; a failure here is a bug.
		panic(err)
	}
	return c
}
