package config

const (
	// MaxNameLength bounds site, project and persona names.
	// Fits PostgreSQL VARCHAR(255).
	MaxNameLength = 255

	// MaxTitleLength bounds article titles (VARCHAR(500)).
	MaxTitleLength = 500

	// MaxListItems bounds goals, challenges, interests, audiences and categories.
	MaxListItems = 50

	// MaxListItemLength bounds a single entry of those lists.
	MaxListItemLength = 200

	// MaxPersonaDescriptionLength bounds the free text sent for AI persona generation.
	MaxPersonaDescriptionLength = 2000

	// MaxPersonaAge is the upper bound accepted for a persona's age.
	MaxPersonaAge = 120
)
