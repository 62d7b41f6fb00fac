package keys

// ModalState is the create/edit modal's lifecycle.
type ModalState int

const (
	ModalClosed ModalState = iota
	ModalCreate
	ModalEdit
	ModalSubmitting
)

func (s ModalState) String() string {
	switch s {
	case ModalCreate:
		return "create"
	case ModalEdit:
		return "edit"
	case ModalSubmitting:
		return "submitting"
	default:
		return "closed"
	}
}

// Form is the modal draft together with its validation state.
type Form struct {
	state  ModalState
	prior  ModalState
	draft  Record
	errors ValidationErrors
}

// State returns the modal state.
func (f *Form) State() ModalState {
	return f.state
}

// Open reports whether the modal is visible.
func (f *Form) Open() bool {
	return f.state != ModalClosed
}

// Editing reports whether the draft targets an existing record.
func (f *Form) Editing() bool {
	return f.draft.Confirmed()
}

// Draft returns a copy of the staged record.
func (f *Form) Draft() Record {
	return f.draft.Clone()
}

// Errors returns the current validation errors.
func (f *Form) Errors() ValidationErrors {
	if f.errors == nil {
		return ValidationErrors{}
	}
	return f.errors
}

// OpenCreate shows the modal with a blank draft.
func (f *Form) OpenCreate() bool {
	if f.state != ModalClosed {
		return false
	}
	f.draft = Record{}
	f.errors = ValidationErrors{}
	f.state = ModalCreate
	return true
}

// OpenEdit shows the modal with a copy of r.
func (f *Form) OpenEdit(r Record) bool {
	if f.state != ModalClosed {
		return false
	}
	f.draft = r.Clone()
	f.errors = ValidationErrors{}
	f.state = ModalEdit
	return true
}

// SetClientName edits the name and clears its error.
func (f *Form) SetClientName(name string) {
	if !f.editable() {
		return
	}
	f.draft.ClientName = name
	f.Errors().Clear(FieldClientName)
}

// SetFlag edits a boolean attribute on the draft.
func (f *Form) SetFlag(a Attribute, v bool) {
	if !f.editable() {
		return
	}
	a.Set(&f.draft, v)
	f.Errors().Clear(a.Name())
}

// ToggleFlag flips a boolean attribute on the draft.
func (f *Form) ToggleFlag(a Attribute) {
	f.SetFlag(a, !a.Of(f.draft))
}

// Close hides the modal and resets the draft. Ignored while submitting.
func (f *Form) Close() bool {
	if f.state == ModalSubmitting {
		return false
	}
	f.reset()
	return true
}

// Submit validates the draft. On success it returns the outbound payload,
// with a blank identifier sent as an explicit null, and enters Submitting.
func (f *Form) Submit() (Record, bool) {
	if !f.editable() {
		return Record{}, false
	}
	errs := Validate(f.draft)
	f.errors = errs
	if !errs.Empty() {
		return Record{}, false
	}
	payload := f.draft.Clone()
	if payload.APIKey != nil && *payload.APIKey == "" {
		payload.APIKey = nil
	}
	f.prior = f.state
	f.state = ModalSubmitting
	return payload, true
}

// Succeed closes the modal after a confirmed save.
func (f *Form) Succeed() {
	if f.state != ModalSubmitting {
		return
	}
	f.reset()
}

// Fail returns to the open state the submit came from, keeping the draft.
func (f *Form) Fail() {
	if f.state != ModalSubmitting {
		return
	}
	f.state = f.prior
}

func (f *Form) editable() bool {
	return f.state == ModalCreate || f.state == ModalEdit
}

func (f *Form) reset() {
	f.state = ModalClosed
	f.prior = ModalClosed
	f.draft = Record{}
	f.errors = ValidationErrors{}
}
