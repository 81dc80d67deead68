package naming

// dictionaryWords is the curated word list for the dictionary strategy.
// Words are neutral English nouns that read like plausible identifiers.
var dictionaryWords = []string{
	"Anchor", "Arbor", "Aspect", "Atlas", "Aurora", "Basin", "Beacon",
	"Birch", "Breeze", "Brook", "Canyon", "Cedar", "Cinder", "Cliff",
	"Cobalt", "Comet", "Coral", "Crest", "Delta", "Drift", "Dune",
	"Ember", "Fable", "Falcon", "Fern", "Flint", "Forge", "Frost",
	"Garnet", "Glade", "Granite", "Grove", "Harbor", "Hazel", "Heron",
	"Hollow", "Horizon", "Island", "Ivory", "Jasper", "Juniper", "Kestrel",
	"Lagoon", "Lantern", "Larch", "Ledge", "Linden", "Lumen", "Maple",
	"Marble", "Meadow", "Mesa", "Mirage", "Monarch", "Moss", "Nectar",
	"Nimbus", "Oasis", "Ocean", "Onyx", "Orchid", "Osprey", "Pebble",
	"Pinnacle", "Plume", "Prairie", "Quarry", "Quartz", "Raven", "Reef",
	"Ridge", "Ripple", "River", "Rowan", "Saffron", "Sage", "Sierra",
	"Slate", "Solstice", "Sparrow", "Spruce", "Summit", "Sycamore",
	"Talon", "Tempest", "Thicket", "Thistle", "Tundra", "Umber", "Vale",
	"Vertex", "Walnut", "Willow", "Wren", "Zenith", "Zephyr",
}
