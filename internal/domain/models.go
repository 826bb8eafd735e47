// Package domain defines the persistence models for scripts, videos, and
// users, plus the static style, voice, and plan catalogs they reference.
// Persisted types are mapped with GORM and form the core data layer of the
// content studio.
package domain

import "time"

// Style selects the tone, hook, and structure used to build a script.
type Style string

const (
	StyleProfessional Style = "professional"
	StyleCasual       Style = "casual"
	StyleEducational  Style = "educational"
	StyleEntertaining Style = "entertaining"
	StyleSales        Style = "sales"
)

// Styles lists every supported style in declaration order.
var Styles = []Style{StyleProfessional, StyleCasual, StyleEducational, StyleEntertaining, StyleSales}

// ParseStyle maps s to a known Style. Matching is exact, so "SALES" or
// " casual" are unknown. Unknown or empty values fall back to
// StyleProfessional; a style is never rejected.
func ParseStyle(s string) Style {
	st := Style(s)
	for _, known := range Styles {
		if st == known {
			return st
		}
	}
	return StyleProfessional
}

// GenerationRequest is the validated input of a script generation.
type GenerationRequest struct {
	Topic    string
	Duration int
	Style    Style
	UserID   string
}

// Script is the result of a generation. It is created once and never
// mutated afterwards.
//
// Fields:
//   - ID: first 12 hex chars of md5(topic_user_timestamp).
//   - UserID: caller identity, empty for anonymous requests (indexed).
//   - Content: the final markdown script (provider output or template).
//   - Provider: "openai", "anthropic", or "template".
//   - WordCount / EstimatedDuration / Cost / QualityScore: derived metrics.
type Script struct {
	ID                string    `json:"id"                 gorm:"type:char(12);primaryKey"`
	UserID            string    `json:"user_id,omitempty"  gorm:"type:varchar(64);index:idx_user_scripts,priority:1"`
	Topic             string    `json:"topic"              gorm:"type:varchar(255);not null"`
	Content           string    `json:"content"            gorm:"type:text;not null"`
	Style             Style     `json:"style"              gorm:"type:varchar(32);not null"`
	Duration          int       `json:"duration"           gorm:"not null"`
	WordCount         int       `json:"word_count"         gorm:"not null"`
	EstimatedDuration float64   `json:"estimated_duration" gorm:"not null"`
	Provider          string    `json:"provider"           gorm:"type:varchar(32);not null"`
	Cost              float64   `json:"cost"               gorm:"not null"`
	QualityScore      float64   `json:"quality_score"      gorm:"not null"`
	CreatedAt         time.Time `json:"created_at"         gorm:"index:idx_user_scripts,priority:2"`
}

// TableName returns the database table name for Script.
func (Script) TableName() string { return "scripts" }

// Segment is one visual slice of a video, cut from the script text.
type Segment struct {
	SegmentID  int      `json:"segment_id"`
	Text       string   `json:"text"`
	Duration   float64  `json:"duration"`
	Style      string   `json:"style"`
	Colors     []string `json:"colors"`
	Font       string   `json:"font"`
	Background string   `json:"background"`
	Animation  string   `json:"animation"`
}

// Video represents a rendered video built from a stored script.
type Video struct {
	ID           string    `json:"id"                gorm:"type:char(12);primaryKey"`
	ScriptID     string    `json:"script_id"         gorm:"type:char(12);not null;index"`
	UserID       string    `json:"user_id,omitempty" gorm:"type:varchar(64);index"`
	Style        Style     `json:"style"             gorm:"type:varchar(32);not null"`
	Voice        string    `json:"voice"             gorm:"type:varchar(64);not null"`
	VoiceID      string    `json:"voice_id"          gorm:"type:varchar(64);not null"`
	AudioURL     string    `json:"audio_url"         gorm:"type:varchar(512)"`
	VideoURL     string    `json:"video_url"         gorm:"type:varchar(512)"`
	ThumbnailURL string    `json:"thumbnail_url"     gorm:"type:varchar(512)"`
	Duration     int       `json:"duration"`
	Resolution   string    `json:"resolution"        gorm:"type:varchar(16)"`
	Format       string    `json:"format"            gorm:"type:varchar(8)"`
	FileSize     int64     `json:"file_size"`
	Status       string    `json:"status"            gorm:"type:varchar(16)"`
	Cost         float64   `json:"cost"`
	QualityScore float64   `json:"quality_score"`
	Segments     []Segment `json:"segments"          gorm:"serializer:json"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for Video.
func (Video) TableName() string { return "videos" }

// UsageStats counts what a registered user has consumed.
type UsageStats struct {
	ScriptsGenerated int `json:"scripts_generated"`
	VideosCreated    int `json:"videos_created"`
	APICallsMade     int `json:"api_calls_made"`
}

// User is a registered account. Authentication is not enforced; the id is
// what callers send in X-User-ID.
type User struct {
	ID        string     `json:"id"          gorm:"type:varchar(16);primaryKey"`
	Email     string     `json:"email"       gorm:"type:varchar(255);not null;uniqueIndex"`
	Name      string     `json:"name"        gorm:"type:varchar(255);not null"`
	Plan      string     `json:"plan"        gorm:"type:varchar(32);not null;default:'free'"`
	Usage     UsageStats `json:"usage_stats" gorm:"embedded;embeddedPrefix:usage_"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// UsageKind names a metered action. It keys usage counters, plan limits,
// analytics events and per-endpoint quotas.
type UsageKind string

const (
	UsageScriptGeneration UsageKind = "script_generation"
	UsageVideoCreation    UsageKind = "video_creation"
	UsageAPICall          UsageKind = "api_call"
)
