package entitlement

import "time"

// AddMonths suma meses calendario. Si el día no existe en el mes destino se ajusta al último día
// (31/01 + 1 mes = 28/02 ó 29/02), sin desbordar al mes siguiente como time.AddDate.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// Window intervalo de vigencia [Start, End], ambos extremos inclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow construye la ventana de una suscripción que empieza en start y dura months meses.
func NewWindow(start time.Time, months int) Window {
	return Window{Start: start, End: AddMonths(start, months)}
}

// Valid exige Start < End.
func (w Window) Valid() bool {
	return w.Start.Before(w.End)
}

// Contains informa si asOf cae dentro de la ventana (inclusive en ambos extremos).
func (w Window) Contains(asOf time.Time) bool {
	return !asOf.Before(w.Start) && !asOf.After(w.End)
}
