package proxycurl

// Date is a partial calendar date. Any component may be unknown.
type Date struct {
	Day   *int `json:"day"`
	Month *int `json:"month"`
	Year  *int `json:"year"`
}

type Experience struct {
	StartsAt                  *Date   `json:"starts_at"`
	EndsAt                    *Date   `json:"ends_at"`
	Company                   *string `json:"company"`
	CompanyLinkedInProfileURL *string `json:"company_linkedin_profile_url"`
	CompanyFacebookProfileURL *string `json:"company_facebook_profile_url"`
	Title                     *string `json:"title"`
	Description               *string `json:"description"`
	Location                  *string `json:"location"`
	LogoURL                   *string `json:"logo_url"`
}

// Ongoing reports whether the position has no end date.
func (e Experience) Ongoing() bool {
	return e.EndsAt == nil
}

type Education struct {
	StartsAt                 *Date   `json:"starts_at"`
	EndsAt                   *Date   `json:"ends_at"`
	FieldOfStudy             *string `json:"field_of_study"`
	DegreeName               *string `json:"degree_name"`
	School                   *string `json:"school"`
	SchoolLinkedInProfileURL *string `json:"school_linkedin_profile_url"`
	SchoolFacebookProfileURL *string `json:"school_facebook_profile_url"`
	Description              *string `json:"description"`
	LogoURL                  *string `json:"logo_url"`
	Grade                    *string `json:"grade"`
	ActivitiesAndSocieties   *string `json:"activities_and_societies"`
}

// Proficiency is one of ELEMENTARY, LIMITED_WORKING, PROFESSIONAL_WORKING,
// FULL_PROFESSIONAL or NATIVE_OR_BILINGUAL.
type Proficiency string

type Language struct {
	Name        string       `json:"name"`
	Proficiency *Proficiency `json:"proficiency"`
}

type AccomplishmentOrg struct {
	StartsAt    *Date   `json:"starts_at"`
	EndsAt      *Date   `json:"ends_at"`
	OrgName     string  `json:"org_name"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type Publication struct {
	Name        *string `json:"name"`
	Publisher   *string `json:"publisher"`
	PublishedOn *Date   `json:"published_on"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
}

type HonourAward struct {
	Title       *string `json:"title"`
	Issuer      *string `json:"issuer"`
	IssuedOn    *Date   `json:"issued_on"`
	Description *string `json:"description"`
}

type Patent struct {
	Title             *string `json:"title"`
	Issuer            *string `json:"issuer"`
	IssuedOn          *Date   `json:"issued_on"`
	Description       *string `json:"description"`
	ApplicationNumber *string `json:"application_number"`
	PatentNumber      *string `json:"patent_number"`
	URL               *string `json:"url"`
}

type Course struct {
	Name   *string `json:"name"`
	Number *string `json:"number"`
}

type Project struct {
	StartsAt    *Date   `json:"starts_at"`
	EndsAt      *Date   `json:"ends_at"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
}

type TestScore struct {
	Name        *string `json:"name"`
	Score       *string `json:"score"`
	DateOn      *Date   `json:"date_on"`
	Description *string `json:"description"`
}

type VolunteeringExperience struct {
	StartsAt                  *Date   `json:"starts_at"`
	EndsAt                    *Date   `json:"ends_at"`
	Title                     *string `json:"title"`
	Cause                     *string `json:"cause"`
	Company                   *string `json:"company"`
	CompanyLinkedInProfileURL *string `json:"company_linkedin_profile_url"`
	Description               *string `json:"description"`
	LogoURL                   *string `json:"logo_url"`
}

type Certification struct {
	StartsAt      *Date   `json:"starts_at"`
	EndsAt        *Date   `json:"ends_at"`
	Name          *string `json:"name"`
	LicenseNumber *string `json:"license_number"`
	DisplaySource *string `json:"display_source"`
	Authority     *string `json:"authority"`
	URL           *string `json:"url"`
}

type PeopleAlsoViewed struct {
	Link     *string `json:"link"`
	Name     *string `json:"name"`
	Summary  *string `json:"summary"`
	Location *string `json:"location"`
}

type Activity struct {
	Title          *string `json:"title"`
	Link           *string `json:"link"`
	ActivityStatus *string `json:"activity_status"`
}

type SimilarProfile struct {
	Name     *string `json:"name"`
	Link     *string `json:"link"`
	Summary  *string `json:"summary"`
	Location *string `json:"location"`
}

type Article struct {
	Title         *string `json:"title"`
	Link          *string `json:"link"`
	PublishedDate *Date   `json:"published_date"`
	Author        *string `json:"author"`
	ImageURL      *string `json:"image_url"`
}

type PersonGroup struct {
	ProfilePicURL *string `json:"profile_pic_url"`
	Name          *string `json:"name"`
	URL           *string `json:"url"`
}

// InferredSalary bounds are in USD. Either bound may be unknown.
type InferredSalary struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type PersonExtra struct {
	GitHubProfileID   *string `json:"github_profile_id"`
	FacebookProfileID *string `json:"facebook_profile_id"`
	TwitterProfileID  *string `json:"twitter_profile_id"`
	Website           *string `json:"website"`
}

// PersonProfile is the document returned by the person profile endpoint.
// It is decoded once and never mutated. Optional add-on sections are nil
// unless the matching enrichment flag was included.
type PersonProfile struct {
	PublicIdentifier        *string  `json:"public_identifier"`
	ProfilePicURL           *string  `json:"profile_pic_url"`
	BackgroundCoverImageURL *string  `json:"background_cover_image_url"`
	FirstName               *string  `json:"first_name"`
	LastName                *string  `json:"last_name"`
	FullName                *string  `json:"full_name"`
	FollowerCount           *int     `json:"follower_count"`
	Occupation              *string  `json:"occupation"`
	Headline                *string  `json:"headline"`
	Summary                 *string  `json:"summary"`
	Country                 *string  `json:"country"`
	CountryFullName         *string  `json:"country_full_name"`
	City                    *string  `json:"city"`
	State                   *string  `json:"state"`
	Connections             *int     `json:"connections"`
	Gender                  *string  `json:"gender,omitempty"`
	BirthDate               *Date    `json:"birth_date,omitempty"`
	Industry                *string  `json:"industry,omitempty"`
	Interests               []string `json:"interests,omitempty"`
	PersonalEmails          []string `json:"personal_emails,omitempty"`
	PersonalNumbers         []string `json:"personal_numbers,omitempty"`
	Skills                  []string `json:"skills,omitempty"`
	Recommendations         []string `json:"recommendations"`

	Experiences                 []Experience             `json:"experiences"`
	Education                   []Education              `json:"education"`
	LanguagesAndProficiencies   []Language               `json:"languages_and_proficiencies,omitempty"`
	AccomplishmentOrganisations []AccomplishmentOrg      `json:"accomplishment_organisations"`
	AccomplishmentPublications  []Publication            `json:"accomplishment_publications"`
	AccomplishmentHonorsAwards  []HonourAward            `json:"accomplishment_honors_awards"`
	AccomplishmentPatents       []Patent                 `json:"accomplishment_patents"`
	AccomplishmentCourses       []Course                 `json:"accomplishment_courses"`
	AccomplishmentProjects      []Project                `json:"accomplishment_projects"`
	AccomplishmentTestScores    []TestScore              `json:"accomplishment_test_scores"`
	VolunteerWork               []VolunteeringExperience `json:"volunteer_work"`
	Certifications              []Certification          `json:"certifications"`
	PeopleAlsoViewed            []PeopleAlsoViewed       `json:"people_also_viewed"`
	Activities                  []Activity               `json:"activities"`
	SimilarlyNamedProfiles      []SimilarProfile         `json:"similarly_named_profiles"`
	Articles                    []Article                `json:"articles"`
	Groups                      []PersonGroup            `json:"groups"`

	InferredSalary *InferredSalary `json:"inferred_salary,omitempty"`
	Extra          *PersonExtra    `json:"extra,omitempty"`
}

// CurrentExperience returns the first ongoing experience in record order,
// or nil when every experience has ended.
func (p *PersonProfile) CurrentExperience() *Experience {
	for i := range p.Experiences {
		if p.Experiences[i].Ongoing() {
			return &p.Experiences[i]
		}
	}
	return nil
}
