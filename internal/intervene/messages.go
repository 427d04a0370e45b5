package intervene

import (
	"fmt"

	"github.com/madhurim15/flow-shift-companion-sub000/internal/psych"
)

// The message matrix: state x escalation level, three tone tiers per cell.
// Tier 0 is curious, tier 1 concerned, tier 2 direct; the tier is picked by
// the dismissal count, clamped to 2, so tone hardens as the user keeps
// swiping nudges away. Unknown states resolve through the
// seeking_stimulation tables, which is the documented fallback.

type variant struct {
	title   string
	message string
}

// SelectMessage builds the nudge content for a firing escalation level.
// Total: every state and level resolves to a non-empty title and message,
// for arbitrarily large dismissal counts.
func SelectMessage(state psych.State, level, dismissalCount, hourOfDay int, appName string) Intervention {
	if level < 1 {
		level = 1
	}
	if level > 4 {
		level = 4
	}
	tier := dismissalCount
	if tier > 2 {
		tier = 2
	}
	night := hourOfDay > 22 || hourOfDay < 6

	var v variant
	switch level {
	case 1:
		v = level1(state, tier, night)
	case 2:
		v = level2(state, tier)
	case 3:
		v = level3(state, tier)
	default:
		v = level4(state, tier, appName)
	}

	return Intervention{
		Level:        level,
		State:        state,
		Title:        v.title,
		Message:      v.message,
		Alternatives: alternatives(level),
	}
}

// alternatives returns the offered actions for a level. The snooze escape
// hatch only appears once the ladder has reached level 3.
func alternatives(level int) []Alternative {
	alts := []Alternative{
		{ID: "breathing", Title: "Breathe", Description: "3 deep breaths", Duration: "1 min"},
		{ID: "journal", Title: "Journal", Description: "Quick check-in", Duration: "2 mins"},
		{ID: "mood_check", Title: "Mood Check", Description: "How am I feeling?", Duration: "30 secs"},
		{ID: "walk", Title: "Move", Description: "Gentle movement", Duration: "2 mins"},
	}
	if level >= 3 {
		alts = append(alts, Alternative{ID: "snooze", Title: "Snooze 5min", Description: "Pause nudges", Duration: "5 mins"})
	}
	return alts
}

// Level 1: gentle curiosity.
func level1(state psych.State, tier int, night bool) variant {
	switch state {
	case psych.Avoidance:
		switch tier {
		case 0:
			if night {
				return variant{"Gentle Check", "Late scrolling often means big feelings - want to check in? 🌙"}
			}
			return variant{"Gentle Check", "Feeling overwhelmed? Want to try a 2-minute reset instead? 🌱"}
		case 1:
			return variant{"Understanding", "When we scroll to avoid, our feelings are asking for attention 🤗"}
		default:
			return variant{"It's OK", "This feels important to you. What would help right now? 💜"}
		}
	case psych.EmotionalRegulation:
		switch tier {
		case 0:
			return variant{"Heart Check", "Your heart seems heavy. Want to check in with yourself? 💜"}
		case 1:
			if night {
				return variant{"Big Feelings", "Night emotions can feel so big - you're not alone 🌙"}
			}
			return variant{"Big Feelings", "Big feelings deserve gentle attention 🌸"}
		default:
			return variant{"I See You", "What emotion is asking for your attention right now? 🌸"}
		}
	case psych.ImpulseDriven:
		switch tier {
		case 0:
			return variant{"Pause Moment", "This impulse energy - let's pause and check in 💙"}
		case 1:
			return variant{"What's Needed", "What if this urge is pointing to a real need? 💭"}
		default:
			return variant{"Real Hunger", "What's the real hunger underneath this urge? 🌱"}
		}
	default: // seeking_stimulation and anything unrecognized
		switch tier {
		case 0:
			return variant{"Just Checking In", "Your mind seems restless - what are you really looking for? 💙"}
		case 1:
			return variant{"Still Here?", "No worries, just checking in. What's keeping you engaged? ✨"}
		default:
			return variant{"Curious", "I notice you're staying with this - what's pulling you here? 🤔"}
		}
	}
}

// Level 2: concerned check-in.
func level2(state psych.State, tier int) variant {
	switch state {
	case psych.Avoidance:
		switch tier {
		case 0:
			return variant{"Deeper Check", "What are you avoiding right now? Sometimes naming it helps 🌸"}
		case 1:
			return variant{"Feeling Space", "What if we gave that feeling 2 minutes of kind attention instead? 💙"}
		default:
			return variant{"Underneath", "If this feeling could speak, what would it say? 💭"}
		}
	case psych.EmotionalRegulation:
		switch tier {
		case 0:
			return variant{"Emotional Check", "When emotions are intense, slowing down can help 🌱"}
		case 1:
			return variant{"Color & Shape", "If you could give this feeling a color and shape, what would it be? 🎨"}
		default:
			return variant{"Friend Advice", "What would you tell a friend feeling exactly this way? 🤗"}
		}
	case psych.ImpulseDriven:
		switch tier {
		case 0:
			return variant{"Before Deciding", "Before acting on impulse, want to breathe together? 💨"}
		case 1:
			return variant{"Real Satisfaction", "If money weren't involved, what would truly satisfy this need? ✨"}
		default:
			return variant{"Impulse Check", "What feeling is this impulse trying to fill? 💭"}
		}
	default:
		switch tier {
		case 0:
			return variant{"How Are You?", "Feeling scattered? Sometimes our attention seeks what our heart needs 🌱"}
		case 1:
			return variant{"Energy Check", "This scrolling energy - what if we channeled it into something creative? ✨"}
		default:
			return variant{"Real Need", "If this app disappeared, what would you want to do instead? 🤔"}
		}
	}
}

// Level 3: stronger alternative offer.
func level3(state psych.State, tier int) variant {
	switch state {
	case psych.Avoidance:
		switch tier {
		case 0:
			return variant{"Comfort Alternative", "When we avoid, we often need comfort. Want to journal what you're feeling? 📝"}
		case 1:
			return variant{"Movement Help", "Sometimes movement helps when emotions feel stuck. Gentle stretch? 🧘"}
		default:
			return variant{"Kind Attention", "What's one small, kind thing you could do for yourself right now? ✨"}
		}
	case psych.EmotionalRegulation:
		switch tier {
		case 0:
			return variant{"Movement Support", "When emotions are big, movement helps. Want to try a gentle stretch? 🧘"}
		case 1:
			return variant{"Friend to Self", "Sometimes talking to yourself like a friend helps. Want to try? 💙"}
		default:
			return variant{"Breathe Together", "What if we breathed through this feeling together? 💨"}
		}
	case psych.ImpulseDriven:
		switch tier {
		case 0:
			return variant{"Three Breaths", "Before you decide, want to take 3 deep breaths and ask what you really need? 💨"}
		case 1:
			return variant{"Journal Instead", "Sometimes we buy when we need to feel something. Want to journal instead? 📝"}
		default:
			return variant{"Mood Check First", "What if we tried a 2-minute mood check first? 💙"}
		}
	default:
		switch tier {
		case 0:
			return variant{"Creative Alternative", "Your mind is active - how about a quick journal check-in instead? 📝"}
		case 1:
			return variant{"Focus Reset", "Want to try a 2-minute creative break instead? 🎨"}
		default:
			return variant{"True Satisfaction", "Take a breath - what would truly satisfy this need right now? ✨"}
		}
	}
}

// Level 4: pattern recognition. The only level that names the app, so the
// nudge reads as "I've noticed" rather than a one-off interruption.
func level4(state psych.State, tier int, appName string) variant {
	switch state {
	case psych.Avoidance:
		switch tier {
		case 0:
			return variant{"Avoidance Pattern", fmt.Sprintf("You've been on %s for a while now. This scrolling is protecting you from something difficult. That's human, but you're stronger than you know. 💜", appName)}
		case 1:
			return variant{"Courage to Feel", "Avoiding is exhausting. What if we faced this feeling with compassion? 🌸"}
		default:
			return variant{"Breaking Free", "You deserve to feel free from this cycle. What small step would help right now? ✨"}
		}
	case psych.EmotionalRegulation:
		switch tier {
		case 0:
			return variant{"Emotional Overflow", fmt.Sprintf("You've been on %s for a while now. Your emotions are overflowing into endless scrolling. You deserve better support than this. 💙", appName)}
		case 1:
			return variant{"Real Comfort", "This app can't give you the comfort your heart needs. What would? 🌱"}
		default:
			return variant{"Worth More", "You're worth more than this endless cycle. How can we honor your feelings differently? 💜"}
		}
	case psych.ImpulseDriven:
		switch tier {
		case 0:
			return variant{"Impulse Cycle", fmt.Sprintf("You've been on %s for a while now. This impulse pattern is running your life. You have the power to choose differently. 💪", appName)}
		case 1:
			return variant{"Breaking Chains", "These impulses are chains. What would freedom feel like? ✨"}
		default:
			return variant{"Real Power", "Your real power is in the pause. What do you actually need right now? 🌱"}
		}
	default:
		switch tier {
		case 0:
			return variant{"Pattern Recognition", fmt.Sprintf("You've been on %s for a while now. This pattern isn't serving your wellbeing. Let's break it together. 🌱", appName)}
		case 1:
			return variant{"Breaking Cycles", "I notice this has become a cycle. Your future self will thank you for pausing now. ✨"}
		default:
			return variant{"Wellbeing Matters", "Your mental wellbeing matters more than this scroll. What would truly nourish you right now? 💙"}
		}
	}
}
