package validators

import "testing"

type offerForm struct {
	Email    string `validate:"required,email"`
	RideDate string `validate:"required,ride_date"`
	RideTime string `validate:"required,ride_time"`
	UPIID    string `validate:"omitempty,upi_id"`
	Seats    int    `validate:"min=1,max=8"`
}

func validForm() offerForm {
	return offerForm{
		Email:    "asha@example.com",
		RideDate: "2026-09-02",
		RideTime: "08:30",
		UPIID:    "asha@okbank",
		Seats:    3,
	}
}

func TestValidateStructOK(t *testing.T) {
	if errs := ValidateStruct(validForm()); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	// omitempty UPI id
	form := validForm()
	form.UPIID = ""
	if errs := ValidateStruct(form); len(errs) != 0 {
		t.Fatalf("unexpected errors with empty upi id: %v", errs)
	}
}

func TestValidateStructCustomTags(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*offerForm)
		field  string
	}{
		{"bad date", func(f *offerForm) { f.RideDate = "02-09-2026" }, "RideDate"},
		{"bad time", func(f *offerForm) { f.RideTime = "8.30am" }, "RideTime"},
		{"bad upi", func(f *offerForm) { f.UPIID = "no-handle" }, "UPIID"},
		{"seats too high", func(f *offerForm) { f.Seats = 9 }, "Seats"},
		{"missing email", func(f *offerForm) { f.Email = "" }, "Email"},
	}

	for _, tc := range cases {
		form := validForm()
		tc.mutate(&form)
		errs := ValidateStruct(form)
		if len(errs) == 0 {
			t.Errorf("%s: expected a validation error", tc.name)
			continue
		}
		fields := errs.Fields()
		if _, ok := fields[tc.field]; !ok {
			t.Errorf("%s: error fields %v missing %s", tc.name, fields, tc.field)
		}
	}
}
