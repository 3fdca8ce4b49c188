package models

import "time"

// Skill categories.
const (
	CategoryLanguages  = "languages"
	CategoryFrameworks = "frameworks"
	CategoryTools      = "tools"
	CategoryDatabases  = "databases"
	CategoryCloud      = "cloud"
	CategoryOther      = "other"
)

// Categories lists the skill categories in display order.
var Categories = []string{
	CategoryLanguages,
	CategoryFrameworks,
	CategoryTools,
	CategoryDatabases,
	CategoryCloud,
	CategoryOther,
}

// Skill is a technology with a derived proficiency tier.
type Skill struct {
	Name         string `bson:"name" json:"name"`
	Level        string `bson:"level" json:"level"`
	Proficiency  int    `bson:"proficiency" json:"proficiency"`
	ProjectCount int    `bson:"projectCount" json:"projectCount"`
}

// SkillsDoc is stored in skills.
type SkillsDoc struct {
	Username      string             `bson:"username" json:"username"`
	Skills        map[string][]Skill `bson:"skills" json:"skills"`
	ExtractedFrom int                `bson:"extractedFrom" json:"extractedFrom"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Achievement is AI-generated copy plus the hash of the data it was generated from.
type Achievement struct {
	Username     string    `bson:"username" json:"username"`
	Summary      string    `bson:"summary" json:"summary"`
	BulletPoints []string  `bson:"bulletPoints" json:"bulletPoints"`
	Bio          string    `bson:"bio" json:"bio"`
	SourceHash   string    `bson:"sourceHash" json:"sourceHash"`
	GeneratedAt  time.Time `bson:"generatedAt" json:"generatedAt"`
	UpdatedAt    time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// SocialLinks are the profile links shown on the about section.
type SocialLinks struct {
	GitHub   string `bson:"github" json:"github"`
	LinkedIn string `bson:"linkedin" json:"linkedin"`
	Twitter  string `bson:"twitter" json:"twitter"`
}

// AboutStats are aggregate numbers shown on the about section.
type AboutStats struct {
	YearsOfExperience int `bson:"yearsOfExperience" json:"yearsOfExperience"`
	ProjectsCompleted int `bson:"projectsCompleted" json:"projectsCompleted"`
	TotalStars        int `bson:"totalStars" json:"totalStars"`
	TotalCommits      int `bson:"totalCommits" json:"totalCommits"`
}

// AboutProfile is stored in about.
type AboutProfile struct {
	Username   string      `bson:"username" json:"username"`
	Bio        string      `bson:"bio" json:"bio"`
	Location   string      `bson:"location" json:"location"`
	Company    string      `bson:"company" json:"company"`
	Blog       string      `bson:"blog" json:"blog"`
	Email      string      `bson:"email" json:"email"`
	Social     SocialLinks `bson:"social" json:"social"`
	Stats      AboutStats  `bson:"stats" json:"stats"`
	Highlights []string    `bson:"highlights" json:"highlights"`
	UpdatedAt  time.Time   `bson:"updatedAt" json:"updatedAt"`
}
