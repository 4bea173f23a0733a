package types

// ResumeRecord is the structured resume handed to the analysis engine.
// Every field is optional; an empty record is valid input.
type ResumeRecord struct {
	Personal       *PersonalInfo    `json:"personal,omitempty" yaml:"personal,omitempty"`
	Summary        string           `json:"summary,omitempty" yaml:"summary,omitempty"`
	Experience     []Experience     `json:"experience,omitempty" yaml:"experience,omitempty"`
	Education      []Education      `json:"education,omitempty" yaml:"education,omitempty"`
	Skills         []Skill          `json:"skills,omitempty" yaml:"skills,omitempty"`
	Projects       []Project        `json:"projects,omitempty" yaml:"projects,omitempty"`
	Certifications []Certification  `json:"certifications,omitempty" yaml:"certifications,omitempty"`
	AdditionalInfo []AdditionalInfo `json:"additionalInfo,omitempty" yaml:"additionalInfo,omitempty"`
}

// PersonalInfo holds contact details
type PersonalInfo struct {
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Title   string   `json:"title,omitempty" yaml:"title,omitempty"`
	Email   string   `json:"email,omitempty" yaml:"email,omitempty"`
	Phone   string   `json:"phone,omitempty" yaml:"phone,omitempty"`
	Address string   `json:"address,omitempty" yaml:"address,omitempty"`
	Links   []string `json:"links,omitempty" yaml:"links,omitempty"`
}

// Experience represents one position held
type Experience struct {
	Position         string `json:"position,omitempty" yaml:"position,omitempty"`
	Company          string `json:"company,omitempty" yaml:"company,omitempty"`
	StartDate        string `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate          string `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Current          bool   `json:"current,omitempty" yaml:"current,omitempty"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty"`
	Responsibilities string `json:"responsibilities,omitempty" yaml:"responsibilities,omitempty"`
}

// Education represents one degree or program
type Education struct {
	Institution    string `json:"institution,omitempty" yaml:"institution,omitempty"`
	Degree         string `json:"degree,omitempty" yaml:"degree,omitempty"`
	Field          string `json:"field,omitempty" yaml:"field,omitempty"`
	GPA            string `json:"gpa,omitempty" yaml:"gpa,omitempty"`
	GraduationYear string `json:"graduationYear,omitempty" yaml:"graduationYear,omitempty"`
}

// Skill is a named skill; Category and Level are free-form tags
type Skill struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	Level    string `json:"level,omitempty" yaml:"level,omitempty"`
}

type Project struct {
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty" yaml:"technologies,omitempty"`
	Link         string   `json:"link,omitempty" yaml:"link,omitempty"`
}

type Certification struct {
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Issuer string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Date   string `json:"date,omitempty" yaml:"date,omitempty"`
}

type AdditionalInfo struct {
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
}

// TextFragment is one attributable piece of resume text
type TextFragment struct {
	Text    string `json:"text"`
	Section string `json:"section"`
	Field   string `json:"field"`
}
