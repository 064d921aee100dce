package models

import "time"

// BlogPost is an article shown in the site's blog.
type BlogPost struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	ImageURL  *string   `json:"image_url"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeamMember is a person listed on the team page.
type TeamMember struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Designation string    `json:"designation"`
	Bio         *string   `json:"bio"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Testimonial is a customer quote. Rating, when present, is 1–5.
type Testimonial struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Company   *string   `json:"company"`
	Content   string    `json:"content"`
	Rating    *int      `json:"rating"`
	ImageURL  *string   `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Partner is an organisation shown in the partners strip.
type Partner struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Website   *string   `json:"website"`
	LogoURL   *string   `json:"logo_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Training delivery modes.
const (
	TrainingModeOnline  = "Online"
	TrainingModeOffline = "Offline"
	TrainingModeHybrid  = "Hybrid"
)

// Training is an upcoming course.
type Training struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      *string   `json:"description"`
	StartDate        Date      `json:"start_date"`
	EndDate          *Date     `json:"end_date"`
	Location         *string   `json:"location"`
	Mode             string    `json:"mode"`
	ImageURL         *string   `json:"image_url"`
	RegistrationLink *string   `json:"registration_link"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Contact is a submission of the public contact form.
type Contact struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Address     string    `json:"address"`
	Message     string    `json:"message"`
	ReqType     string    `json:"req_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Statistics is the single row of headline numbers on the home page.
type Statistics struct {
	ID                   string    `json:"id"`
	ProgramsDelivered    int       `json:"programs_delivered"`
	ProfessionalsTrained int       `json:"professionals_trained"`
	SatisfactionRate     int       `json:"satisfaction_rate"`
	CorporatePartners    int       `json:"corporate_partners"`
	UpdatedAt            time.Time `json:"updated_at"`
}
