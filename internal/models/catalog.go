package models

// FeaturedCourse is a curated marketing catalog entry. The featured list is
// editorial content, not backed by instructor-owned rows.
type FeaturedCourse struct {
	Title      string  `json:"title"`
	Instructor string  `json:"instructor"`
	Duration   string  `json:"duration"`
	Students   int     `json:"students"`
	Rating     float64 `json:"rating"`
	Price      string  `json:"price"`
	Image      string  `json:"image"`
	Category   string  `json:"category"`
	Level      string  `json:"level"`
	Featured   bool    `json:"featured,omitempty"`
}

// PlatformStats holds the headline counters for the marketing page.
type PlatformStats struct {
	PublishedCourses int `json:"published_courses"`
	Instructors      int `json:"instructors"`
}
