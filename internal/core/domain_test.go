package core

import (
	"errors"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestPersonDisplayName(t *testing.T) {
	cases := []struct {
		p    Person
		want string
	}{
		{Person{GivenName: "Ana", FirstSurname: "García", SecondSurname: strPtr("Pérez")}, "Ana García Pérez"},
		{Person{GivenName: "Luis", FirstSurname: "Mora"}, "Luis Mora"},
		{Person{GivenName: "Luis", FirstSurname: "Mora", SecondSurname: strPtr("  ")}, "Luis Mora"},
		{Person{GivenName: " Eva ", FirstSurname: "Ruiz"}, "Eva Ruiz"},
	}
	for _, tc := range cases {
		if got := tc.p.DisplayName(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestNormalizePaymentStatus(t *testing.T) {
	cases := map[string]PaymentStatus{
		"pagado":    PaymentPaid,
		"PAGADO":    PaymentPaid,
		" Pagado ":  PaymentPaid,
		"pendiente": PaymentPending,
		"vencido":   PaymentOverdue,
		"fallido":   PaymentOverdue,
		"reembolso": PaymentOther,
		"":          PaymentOther,
	}
	for in, want := range cases {
		if got := NormalizePaymentStatus(in); got != want {
			t.Fatalf("%q expected %s, got %s", in, want, got)
		}
	}
}

func TestNormalizeReservationStatus(t *testing.T) {
	if got := NormalizeReservationStatus("Aprobada"); got != ReservationConfirmed {
		t.Fatalf("expected aprobada to map to confirmada, got %s", got)
	}
	if got := NormalizeReservationStatus("confirmada").Label(); got != "Aprobada" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := NormalizeReservationStatus("???"); got != ReservationOther {
		t.Fatalf("expected other, got %s", got)
	}
}

func TestPaymentConcept(t *testing.T) {
	cases := map[int]string{
		1: "Cuota de Mantenimiento",
		2: "Cuota Extraordinaria",
		7: "Otro pago",
	}
	for cuota, want := range cases {
		if got := (Payment{CuotaType: cuota}).Concept(); got != want {
			t.Fatalf("cuota %d expected %q, got %q", cuota, want, got)
		}
	}
}

func TestPaymentAmount(t *testing.T) {
	if m, ok := (Payment{Total: "100.50"}).Amount(); !ok || m.Cents != 10050 {
		t.Fatalf("expected 10050, got %d ok=%v", m.Cents, ok)
	}
	if _, ok := (Payment{Total: "cien"}).Amount(); ok {
		t.Fatalf("expected unparseable amount")
	}
}

func TestSessionRoles(t *testing.T) {
	s := Session{Roles: []string{"ADMIN"}}
	if !s.HasRole(RoleAdmin) {
		t.Fatalf("role match must ignore case")
	}
	if s.HomePath() != "/admin" {
		t.Fatalf("unexpected home %s", s.HomePath())
	}
	board := Session{Roles: []string{"Mesa_Directiva"}}
	if board.HomePath() != "/mesa" || board.HasAnyRole(RoleAdmin) {
		t.Fatalf("unexpected board routing")
	}
	if (Session{}).HomePath() != "/residente" {
		t.Fatalf("residents land on /residente")
	}
	if !(Session{}).HasAnyRole() {
		t.Fatalf("no required roles means any session passes")
	}
}

func TestYearMonthRollover(t *testing.T) {
	jan := YearMonth{Year: 2025, Month: time.January}
	if got := jan.Prev(); got != (YearMonth{Year: 2024, Month: time.December}) {
		t.Fatalf("expected 2024-12, got %s", got)
	}
	dec := YearMonth{Year: 2024, Month: time.December}
	if got := dec.Next(); got != jan {
		t.Fatalf("expected 2025-01, got %s", got)
	}
	if got := jan.Back(13); got != (YearMonth{Year: 2023, Month: time.December}) {
		t.Fatalf("expected 2023-12, got %s", got)
	}
	if !dec.Before(jan) || jan.Before(dec) {
		t.Fatalf("ordering is wrong")
	}
}

func TestParseTimestamp(t *testing.T) {
	mx, err := time.LoadLocation("America/Mexico_City")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	cases := []struct {
		in    string
		month YearMonth
		ok    bool
	}{
		{"2025-12-21T15:00:00Z", YearMonth{2025, time.December}, true},
		// midnight UTC on the 1st is still the previous month in Mexico City
		{"2025-12-01T03:00:00Z", YearMonth{2025, time.November}, true},
		{"2025-12-01T03:00:00", YearMonth{2025, time.December}, true},
		{"2025-03-05", YearMonth{2025, time.March}, true},
		{"2025-03-05T10:00:00.123-06:00", YearMonth{2025, time.March}, true},
		{"ayer", YearMonth{}, false},
		{"", YearMonth{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseTimestamp(tc.in, mx)
		if ok != tc.ok {
			t.Fatalf("%q expected ok=%v", tc.in, tc.ok)
		}
		if ok && MonthOf(got, mx) != tc.month {
			t.Fatalf("%q expected %s, got %s", tc.in, tc.month, MonthOf(got, mx))
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	if v, err := ParseTimeOfDay("09:30"); err != nil || v != 570 {
		t.Fatalf("expected 570, got %d err=%v", v, err)
	}
	if v, err := ParseTimeOfDay("18:00:00"); err != nil || v != 1080 {
		t.Fatalf("expected 1080, got %d err=%v", v, err)
	}
	for _, bad := range []string{"24:00", "9:30", "aa:bb", ""} {
		if _, err := ParseTimeOfDay(bad); !errors.Is(err, ErrInvalidTime) {
			t.Fatalf("%q expected ErrInvalidTime, got %v", bad, err)
		}
	}
	if NormalizeTime("09:30") != "09:30:00" || NormalizeTime("09:30:15") != "09:30:15" {
		t.Fatalf("normalize failed")
	}
}
