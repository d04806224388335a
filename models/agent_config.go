package models

import "time"

// AgentConfigID is the _id of the singleton config document.
const AgentConfigID = "agent"

// AgentConfig is the reusable content blueprint plus the last run's result.
// There is exactly one document; it is created with defaults on first access
// and mutated only through the config store's atomic update.
type AgentConfig struct {
	ContentTheme string   `bson:"content_theme" json:"contentTheme" binding:"required"`
	Tone         string   `bson:"tone" json:"tone" binding:"required"`
	Hashtags     []string `bson:"hashtags" json:"hashtags"`
	CallToAction string   `bson:"call_to_action,omitempty" json:"callToAction"`
	ImagePrompt  string   `bson:"image_prompt,omitempty" json:"imagePrompt"`
	AutoPublish  bool     `bson:"auto_publish" json:"autoPublish"`

	// DailyTime is "HH:MM" (24-hour) in the reference timezone.
	DailyTime string `bson:"daily_time" json:"dailyTime"`

	LastPost *GeneratedPost `bson:"last_post,omitempty" json:"lastPost,omitempty"`

	// LastRunDate is "YYYY-MM-DD" in the reference timezone; set when a
	// pipeline run completes, never by the scheduler.
	LastRunDate string `bson:"last_run_date,omitempty" json:"lastRunDate,omitempty"`
}

// GeneratedPost is the output of a single pipeline run. Only the most
// recent one is retained, embedded in AgentConfig.
type GeneratedPost struct {
	Caption  string   `bson:"caption" json:"caption"`
	Hashtags []string `bson:"hashtags" json:"hashtags"`
	ImageURL string   `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	AltText  string   `bson:"alt_text,omitempty" json:"altText,omitempty"`

	// Published is true only after the platform confirmed the publish.
	// InstagramMediaID without Published means a media container was
	// created but never confirmed.
	Published        bool   `bson:"published" json:"published"`
	InstagramMediaID string `bson:"instagram_media_id,omitempty" json:"instagramMediaId,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// DefaultAgentConfig seeds the singleton on first access. Theme and tone
// are non-empty from the start so the initialized-record invariant holds.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		ContentTheme: "daily inspiration",
		Tone:         "friendly",
		Hashtags:     []string{},
		AutoPublish:  false,
		DailyTime:    "09:00",
	}
}
