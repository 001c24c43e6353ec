package model

// SurveyResponse is submitted once after registration and never read back.
type SurveyResponse struct {
	FullName         string `json:"full_name,omitempty"`
	Email            string `json:"email,omitempty"`
	AgeRange         string `json:"age_range,omitempty"`
	Country          string `json:"country,omitempty"`
	LinkedInProfile  string `json:"linkedin_profile,omitempty"`
	BestDescribesYou string `json:"best_describes_you,omitempty"`
	Industry         string `json:"industry,omitempty"`
	JobRole          string `json:"job_role,omitempty"`
	YearsExperience  string `json:"years_experience,omitempty"`
	HowDidYouHear    string `json:"how_did_you_hear,omitempty"`
	ReferralName     string `json:"referral_name,omitempty"`

	Goals           string `json:"goals,omitempty"`
	Challenges      string `json:"challenges,omitempty"`
	ExperienceLevel string `json:"experience_level,omitempty"`
	AdditionalNotes string `json:"additional_notes,omitempty"`
}
