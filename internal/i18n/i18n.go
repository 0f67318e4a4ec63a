// Package i18n holds the translation table for user-visible plan labels.
package i18n

// Language represents a supported language.
type Language string

const (
	// English is the English language.
	English Language = "en"
	// Finnish is the Finnish language.
	Finnish Language = "fi"
)

// DefaultLanguage is the fallback language.
const DefaultLanguage = Language(English)

// translations maps language codes to translation keys and their values.
var translations = map[Language]map[string]string{
	English: {
		"meal.breakfast": "Breakfast",
		"meal.lunch": "Lunch",
		"meal.dinner": "Dinner",
		"meal.snack": "Snack",
		"meal.evening_snack": "Evening snack",
		"category.protein": "Protein",
		"category.carb": "Carbohydrate",
		"category.fat": "Fat",
		"category.fruit": "Fruit",
		"category.vegetable": "Vegetable",
		"split.full_body": "Full body",
		"split.upper": "Upper body",
		"split.lower": "Lower body",
		"split.push": "Push",
		"split.pull": "Pull",
		"split.legs": "Legs",
		"day.training": "Training day",
		"day.rest": "Rest day",
		"warning.macro_deviation": "Plan deviates from the calorie target",
	},
	Finnish: {
		"meal.breakfast": "Aamiainen",
		"meal.lunch": "Lounas",
		"meal.dinner": "Päivällinen",
		"meal.snack": "Välipala",
		"meal.evening_snack": "Iltapala",
		"category.protein": "Proteiini",
		"category.carb": "Hiilihydraatti",
		"category.fat": "Rasva",
		"category.fruit": "Hedelmä",
		"category.vegetable": "Vihannes",
		"split.full_body": "Koko keho",
		"split.upper": "Ylävartalo",
		"split.lower": "Alavartalo",
		"split.push": "Työntävät",
		"split.pull": "Vetävät",
		"split.legs": "Jalat",
		"day.training": "Treenipäivä",
		"day.rest": "Lepopäivä",
		"warning.macro_deviation": "Suunnitelma poikkeaa kaloritavoitteesta",
	},
}

// SupportedLanguages returns a list of all supported languages.
func SupportedLanguages() []Language {
	return []Language{English, Finnish}
}

// IsSupported checks if a language is supported.
func IsSupported(lang Language) bool {
	_, ok := translations[lang]
	return ok
}

// Translate returns the translation for the given key in the specified language.
// If the key is not found, it falls back to the default language.
// If still not found, it returns the key itself.
func Translate(lang Language, key string) string {
	// Try the requested language.
	if langTranslations, ok := translations[lang]; ok {
		if translation, ok := langTranslations[key]; ok {
			return translation
		}
	}

	// Fallback to default language.
	if lang != DefaultLanguage {
		if langTranslations, ok := translations[DefaultLanguage]; ok {
			if translation, ok := langTranslations[key]; ok {
				return translation
			}
		}
	}

	// Return the key itself if no translation found.
	return key
}
