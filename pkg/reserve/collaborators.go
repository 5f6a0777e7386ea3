package reserve

// Collaborator interfaces consumed by the reservation engine. The console
// package provides the interactive implementations; tests substitute fakes.

// Logger is the subset of console logging the engine reports progress on.
type Logger interface {
	Step(message string)
	Infof(format string, args ...interface{})
	Successf(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Verbosef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// Credentials is a Resy email/password pair.
type Credentials struct {
	Email    string
	Password string
}

// CredentialSource supplies login credentials when configuration omits them.
// ok=false means the user will authenticate manually in the opened browser
// window and the gate should only wait for confirmation.
type CredentialSource interface {
	Credentials() (creds Credentials, ok bool, err error)
}

// SlotPicker presents an ordered slot listing for interactive selection.
// ok=false means the user cancelled instead of picking.
type SlotPicker interface {
	Pick(slots SlotSet) (slot Slot, ok bool, err error)
}

// Confirmer asks for the final yes/no before the confirm click is issued.
type Confirmer interface {
	ConfirmBooking(slot Slot) (bool, error)
}
