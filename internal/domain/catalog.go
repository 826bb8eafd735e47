package domain

// StyleTemplate drives prompt construction and the local fallback render.
// Hook carries a single {topic} placeholder.
type StyleTemplate struct {
	Hook         string   `json:"hook"`
	Tone         string   `json:"tone"`
	Structure    []string `json:"structure"`
	CallToAction string   `json:"call_to_action"`
}

var styleTemplates = map[Style]StyleTemplate{
	StyleProfessional: {
		Hook:         "Let's explore {topic} and discover how it can transform your approach.",
		Tone:         "professional and informative",
		Structure:    []string{"hook", "main_points", "call_to_action"},
		CallToAction: "What are your thoughts on this? Share your experience in the comments below, and don't forget to follow for more insights like this.",
	},
	StyleCasual: {
		Hook:         "Hey there! Today we're diving into {topic} - and trust me, you'll want to stick around for this.",
		Tone:         "friendly and conversational",
		Structure:    []string{"hook", "personal_story", "main_points", "call_to_action"},
		CallToAction: "So what do you think? Drop a comment and let me know! Hit that follow button for more content like this.",
	},
	StyleEducational: {
		Hook:         "Understanding {topic} is crucial for success. Let me break it down for you.",
		Tone:         "educational and clear",
		Structure:    []string{"hook", "definition", "examples", "practical_tips", "call_to_action"},
		CallToAction: "I'd love to hear your thoughts! Comment below with your questions, and subscribe for more educational content.",
	},
	StyleEntertaining: {
		Hook:         "Buckle up! We're about to explore {topic} in a way you've never seen before.",
		Tone:         "entertaining and engaging",
		Structure:    []string{"hook", "story", "humor", "main_points", "call_to_action"},
		CallToAction: "That was fun! What's your take? Comment below, follow for more entertainment, and I'll see you in the next video!",
	},
	StyleSales: {
		Hook:         "Still struggling without {topic}? Here's what you're missing out on.",
		Tone:         "persuasive and benefit-driven",
		Structure:    []string{"hook", "problem", "solution", "social_proof", "call_to_action"},
		CallToAction: "Ready to get started? Tap the link below, grab your spot today, and follow for more tips like this.",
	},
}

// TemplateFor returns the template of s, or the professional one when s is
// unknown.
func TemplateFor(s Style) StyleTemplate {
	if t, ok := styleTemplates[s]; ok {
		return t
	}
	return styleTemplates[StyleProfessional]
}

// VideoTemplate is the visual treatment applied to every segment.
type VideoTemplate struct {
	Look        string
	Colors      []string
	Fonts       []string
	Transitions string
	Background  string
}

var videoTemplates = map[Style]VideoTemplate{
	StyleProfessional: {"clean and corporate", []string{"#1e40af", "#3b82f6", "#60a5fa"}, []string{"Inter", "Roboto", "Open Sans"}, "smooth", "gradient"},
	StyleCasual:       {"friendly and approachable", []string{"#f59e0b", "#fbbf24", "#fcd34d"}, []string{"Poppins", "Nunito", "Lato"}, "bounce", "pattern"},
	StyleEducational:  {"clear and informative", []string{"#059669", "#10b981", "#34d399"}, []string{"Source Sans Pro", "Merriweather", "Lora"}, "fade", "minimal"},
	StyleEntertaining: {"dynamic and engaging", []string{"#dc2626", "#ef4444", "#f87171"}, []string{"Montserrat", "Bebas Neue", "Oswald"}, "zoom", "animated"},
	StyleSales:        {"bold and high-contrast", []string{"#7c3aed", "#8b5cf6", "#a78bfa"}, []string{"Montserrat", "Inter", "Roboto"}, "zoom", "gradient"},
}

// VideoTemplateFor returns the visual template of s (professional when unknown).
func VideoTemplateFor(s Style) VideoTemplate {
	if t, ok := videoTemplates[s]; ok {
		return t
	}
	return videoTemplates[StyleProfessional]
}

// Animations lists the per-segment animations of each transition family.
var Animations = map[string][]string{
	"smooth": {"fadeIn", "slideIn", "zoomIn"},
	"bounce": {"bounceIn", "pulse", "shake"},
	"fade":   {"fadeIn", "fadeOut"},
	"zoom":   {"zoomIn", "zoomOut", "rotate"},
}

// VoiceProfile is a text-to-speech voice.
type VoiceProfile struct {
	Key         string `json:"key"`
	VoiceID     string `json:"voice_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Accent      string `json:"accent"`
}

// VoiceProfiles is keyed by profile key.
var VoiceProfiles = map[string]VoiceProfile{
	"professional_male":   {"professional_male", "pNInz6obpgDQGcFmaJgB", "Professional Male", "Clear, authoritative voice perfect for business content", "en-US", "American"},
	"professional_female": {"professional_female", "EXAVITQu4vr4xnSDxMaL", "Professional Female", "Warm, professional voice ideal for educational content", "en-US", "American"},
	"casual_male":         {"casual_male", "VR6AewLTigWG4xSOukaG", "Casual Male", "Friendly, conversational voice for casual content", "en-US", "American"},
	"casual_female":       {"casual_female", "AZnzlk1XvdvUeBnXmlld", "Casual Female", "Energetic, engaging voice for entertainment content", "en-US", "American"},
}

var styleVoices = map[Style]string{
	StyleProfessional: "professional_male",
	StyleCasual:       "casual_female",
	StyleEducational:  "professional_female",
	StyleEntertaining: "casual_male",
	StyleSales:        "professional_female",
}

// VoiceFor resolves the voice of a video. A known key wins; otherwise the
// style default is used.
func VoiceFor(s Style, key string) VoiceProfile {
	if v, ok := VoiceProfiles[key]; ok {
		return v
	}
	if k, ok := styleVoices[s]; ok {
		return VoiceProfiles[k]
	}
	return VoiceProfiles["professional_male"]
}

// PlanLimits caps usage per subscription plan.
type PlanLimits struct {
	ScriptsPerMonth int `json:"scripts_per_month"`
	VideosPerMonth  int `json:"videos_per_month"`
	StorageGB       int `json:"storage_gb"`
	APICallsPerDay  int `json:"api_calls_per_day"`
}

// Plan describes a subscription tier.
type Plan struct {
	Name     string     `json:"name"`
	Price    float64    `json:"price"`
	Currency string     `json:"currency"`
	Limits   PlanLimits `json:"limits"`
	Features []string   `json:"features"`
}

// Plans is keyed by plan id ("free", "pro", "enterprise").
var Plans = map[string]Plan{
	"free": {
		Name: "Free", Price: 0, Currency: "USD",
		Limits:   PlanLimits{ScriptsPerMonth: 5, VideosPerMonth: 2, StorageGB: 1, APICallsPerDay: 100},
		Features: []string{"Basic script generation", "Standard video creation", "Email support"},
	},
	"pro": {
		Name: "Pro", Price: 29, Currency: "USD",
		Limits:   PlanLimits{ScriptsPerMonth: 50, VideosPerMonth: 20, StorageGB: 10, APICallsPerDay: 1000},
		Features: []string{"Advanced script generation", "HD video creation", "Voice cloning", "Priority support", "Analytics dashboard"},
	},
	"enterprise": {
		Name: "Enterprise", Price: 99, Currency: "USD",
		Limits:   PlanLimits{ScriptsPerMonth: 500, VideosPerMonth: 200, StorageGB: 100, APICallsPerDay: 10000},
		Features: []string{"Unlimited script generation", "4K video creation", "Custom voice training", "Dedicated support", "Advanced analytics", "API access", "White-label options"},
	},
}
