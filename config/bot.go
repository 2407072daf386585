package config

// BotDifficulty affects reaction time and decision quality
type BotDifficulty int

const (
	BotDifficultyEasy BotDifficulty = iota
	BotDifficultyNormal
	BotDifficultyHard
)

// BotDifficultyConfig holds tuning values for bot behavior at a specific difficulty
type BotDifficultyConfig struct {
	ReactionDelay int     // Frames between decisions
	FireRange     float64 // Distance at which the bot starts shooting
	AlignSlack    float64 // How far off an axis the target may be and still be shot at
	WanderFrames  int     // Frames to keep a random heading when no target is in reach
}

// BotConfigData holds all bot-related configuration
type BotConfigData struct {
	Difficulties map[BotDifficulty]BotDifficultyConfig
}

// Bot holds bot AI configuration
var Bot BotConfigData

func init() {
	Bot = BotConfigData{
		Difficulties: map[BotDifficulty]BotDifficultyConfig{
			BotDifficultyEasy: {
				ReactionDelay: 20,
				FireRange:     8.0,
				AlignSlack:    0.2,
				WanderFrames:  90,
			},
			BotDifficultyNormal: {
				ReactionDelay: 10,
				FireRange:     14.0,
				AlignSlack:    0.3,
				WanderFrames:  60,
			},
			BotDifficultyHard: {
				ReactionDelay: 3,
				FireRange:     20.0,
				AlignSlack:    0.35,
				WanderFrames:  30,
			},
		},
	}
}
