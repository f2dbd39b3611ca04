// Package recording defines the voice-banking prompt set and its loader.
package recording

import "fmt"

// Prompt is one scripted recording exercise shown to the user.
type Prompt struct {
	ID          int      `yaml:"id"          json:"id"`
	Title       string   `yaml:"title"       json:"title"`
	Description string   `yaml:"description" json:"description"`
	Duration    string   `yaml:"duration"    json:"duration"`
	Purpose     string   `yaml:"purpose"     json:"purpose"`
	ReadingText string   `yaml:"reading_text,omitempty" json:"reading_text,omitempty"`
	Phrases     []string `yaml:"phrases,omitempty"      json:"phrases,omitempty"`
}

// Validate checks a prompt set for usability: non-empty exercises with
// contiguous 1-based ids, so ordinals map cleanly onto storage keys.
func Validate(prompts []Prompt) error {
	if len(prompts) == 0 {
		return fmt.Errorf("prompt set is empty")
	}
	for i, p := range prompts {
		if p.ID != i+1 {
			return fmt.Errorf("prompt %d: id %d out of sequence (want %d)", i, p.ID, i+1)
		}
		if p.Title == "" {
			return fmt.Errorf("prompt %d: title is required", p.ID)
		}
		if p.Description == "" {
			return fmt.Errorf("prompt %d: description is required", p.ID)
		}
	}
	return nil
}

const rainbowPassage = `When the sunlight strikes raindrops in the air, they act as a prism and form a rainbow. The rainbow is a division of white light into many beautiful colors. These take the shape of a long round arch, with its path high above, and its two ends apparently beyond the horizon. There is, according to legend, a boiling pot of gold at one end. People look, but no one ever finds it. When a man looks for something beyond his reach, his friends say he is looking for the pot of gold at the end of the rainbow. Throughout the centuries people have explained the rainbow in various ways. Some have accepted it as a miracle without physical explanation. To the Hebrews it was a token that there would be no more universal floods. The Greeks used to imagine that it was a sign from the gods to foretell war or heavy rain.`

// DefaultPrompts is the built-in prompt set, used when no prompts
// directory is configured. The exercises cover phonetic range and a
// spread of emotional registers.
func DefaultPrompts() []Prompt {
	return []Prompt{
		{
			ID:          1,
			Title:       "Warm-Up",
			Description: `Say: "Hello, this is my voice"`,
			Duration:    "1 minute",
			Purpose:     "Test audio quality and give feedback",
		},
		{
			ID:          2,
			Title:       "A Favorite Memory",
			Description: "Tell us about your favorite childhood memory",
			Duration:    "1-2 minutes",
			Purpose:     "Captures natural storytelling tone",
		},
		{
			ID:          3,
			Title:       "Someone You Love",
			Description: "Describe someone you love and why they're special",
			Duration:    "1-2 minutes",
			Purpose:     "Rich emotional inflection",
		},
		{
			ID:          4,
			Title:       "Life Advice",
			Description: "What advice would you give your younger self?",
			Duration:    "1-2 minutes",
			Purpose:     "Conversational, reflective tone",
		},
		{
			ID:          5,
			Title:       "Reading Passage - Rainbow",
			Description: "Read this passage aloud naturally (covers many sounds)",
			Duration:    "1-2 minutes",
			Purpose:     "Covers all phonetic sounds",
			ReadingText: rainbowPassage,
		},
		{
			ID:          6,
			Title:       "Proudest Moment",
			Description: "Tell us about your proudest accomplishment",
			Duration:    "1-2 minutes",
			Purpose:     "Positive, energetic tone",
		},
		{
			ID:          7,
			Title:       "Legacy Statement",
			Description: "What do you want people to remember about you?",
			Duration:    "1-2 minutes",
			Purpose:     "Deep, meaningful content",
		},
		{
			ID:          8,
			Title:       "Common Phrases",
			Description: "Say these phrases naturally with emotion",
			Duration:    "1-2 minutes",
			Purpose:     "Practical daily use",
			Phrases: []string{
				"I love you",
				"I'm proud of you",
				"Thank you",
				"Good morning",
				"See you soon",
				"I miss you",
				"You make me happy",
				"Everything will be okay",
			},
		},
	}
}
