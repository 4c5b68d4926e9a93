package booking

import "github.com/Domenick1991/travelbooking/internal/domain"

// Messages are the placeholder texts of a booking page.
type Messages struct {
	Loading string `json:"loading"`
	Failed  string `json:"failed"`
	Missing string `json:"missing"`
}

func MessagesFor(kind domain.ResourceKind) Messages {
	name := string(kind)
	return Messages{
		Loading: "Loading " + name + "...",
		Failed:  "Error loading " + name,
		Missing: "No " + name + " found",
	}
}
