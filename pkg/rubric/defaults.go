package rubric

const (
	// SimpleInterrupted is the simple interrupted suture technique.
	SimpleInterrupted = "simple_interrupted"
	// VerticalMattress is the vertical mattress suture technique.
	VerticalMattress = "vertical_mattress"
	// Subcuticular is the running subcuticular suture technique.
	Subcuticular = "subcuticular"
)

// Defaults returns the built-in rubric sets. Each call returns fresh slices.
func Defaults() (catalog Catalog) {
	catalog = Catalog{
		Sets: map[string]Set{
			SimpleInterrupted: {
				SutureType: SimpleInterrupted,
				Title:      "Simple Interrupted Suture",
				Items:      interruptedItems(),
			},
			VerticalMattress: {
				SutureType: VerticalMattress,
				Title:      "Vertical Mattress Suture",
				Items:      interruptedItems(),
			},
			Subcuticular: {
				SutureType: Subcuticular,
				Title:      "Subcuticular Suture",
				Items:      subcuticularItems(),
			},
		},
	}
	return catalog
}

func interruptedItems() (items []Item) {
	items = []Item{
		{
			Index:       1,
			Name:        "needle perpendicular to skin",
			Text:        "Passes needle perpendicular to skin on both sides of skin",
			IdealResult: "Needle enters and exits within 5 degrees of perpendicular on both sides.",
			Modality:    ModalityVideo,
		},
		{
			Index:       2,
			Name:        "avoiding multiple forceps grasps",
			Text:        "Avoids multiple forceps grasps of skin",
			IdealResult: "A single, precise forceps grasp per skin edge with no regrasping.",
			Modality:    ModalityVideo,
		},
		{
			Index:       3,
			Name:        "instrument ties with square knots",
			Text:        "Instrument ties with square knots",
			IdealResult: "Square knots with proper tension, no slippage and clean throws.",
			Modality:    ModalityVideo,
		},
		{
			Index:       4,
			Name:        "appropriate skin tension",
			Text:        "Approximates skin with appropriate tension",
			IdealResult: "Edges just touching without gaping, puckering or compression.",
			Modality:    ModalityStill,
		},
		{
			Index:       5,
			Name:        "suture spacing (0.5-1.0 cm)",
			Text:        "Places sutures 0.5 - 1.0 cm apart",
			IdealResult: "Uniform 0.5-1.0 cm spacing with no gaps or crowding.",
			Modality:    ModalityStill,
		},
		{
			Index:       6,
			Name:        "skin edge eversion",
			Text:        "Eversion of the skin edges",
			IdealResult: "Skin edges rolled outward along the whole closure with no inversion.",
			Modality:    ModalityStill,
		},
		{
			Index:       7,
			Name:        "economy of time and motion",
			Text:        "Economy of time and motion",
			IdealResult: "Smooth transitions and efficient instrument handling without wasted movement.",
			Modality:    ModalityVideo,
		},
	}
	return items
}

func subcuticularItems() (items []Item) {
	items = []Item{
		{
			Index:       1,
			Name:        "appropriate dermal layer bites",
			Text:        "Runs the suture, placing appropriate bites into dermal layer",
			IdealResult: "Even, consistent bites placed in the dermal layer along the full length.",
			Modality:    ModalityVideo,
		},
		{
			Index:       2,
			Name:        "direct entry across from exit site",
			Text:        "Enters the dermal layer directly across from exit site",
			IdealResult: "Each entry point sits directly across from the previous exit point.",
			Modality:    ModalityVideo,
		},
		{
			Index:       3,
			Name:        "avoiding multiple dermal penetration",
			Text:        "Avoids multiple penetration of the dermis",
			IdealResult: "One pass through the dermis per bite.",
			Modality:    ModalityVideo,
		},
		{
			Index:       4,
			Name:        "avoiding multiple forceps grasps",
			Text:        "Avoids multiple forceps grasps of skin",
			IdealResult: "A single, precise forceps grasp per skin edge with no regrasping.",
			Modality:    ModalityVideo,
		},
		{
			Index:       5,
			Name:        "instrument ties with square knots",
			Text:        "Instrument ties with square knots",
			IdealResult: "Square knots with proper tension, no slippage and clean throws.",
			Modality:    ModalityVideo,
		},
		{
			Index:       6,
			Name:        "appropriate skin tension",
			Text:        "Approximates skin with appropriate tension",
			IdealResult: "Edges just touching without gaping, puckering or compression.",
			Modality:    ModalityStill,
		},
		{
			Index:       7,
			Name:        "economy of time and motion",
			Text:        "Economy of time and motion",
			IdealResult: "Smooth transitions and efficient instrument handling without wasted movement.",
			Modality:    ModalityVideo,
		},
	}
	return items
}
