package domain

import (
	"fmt"
	"time"
)

// DateRange representa um período de datas de calendário, inclusivo nas duas pontas.
// As comparações usam semântica de data de calendário, sem aritmética de timezone.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate garante a invariante start <= end
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("é necessário informar as datas de início e fim")
	}
	if r.Start.After(r.End) {
		return fmt.Errorf("a data de início não pode ser posterior à data de fim")
	}
	return nil
}

// Days retorna a quantidade de dias do período, contando as duas pontas
func (r DateRange) Days() int {
	return int(truncateDay(r.End).Sub(truncateDay(r.Start)).Hours()/24) + 1
}

// PreviousPeriod deriva o período imediatamente anterior com a mesma duração.
// O deslocamento usa o tamanho real do período solicitado, nunca um valor fixo.
func (r DateRange) PreviousPeriod() DateRange {
	span := r.Days()
	return DateRange{
		Start: truncateDay(r.Start).AddDate(0, 0, -span),
		End:   truncateDay(r.End).AddDate(0, 0, -span),
	}
}

// Contains informa se a data de calendário está dentro do período
func (r DateRange) Contains(date time.Time) bool {
	d := truncateDay(date)
	return !d.Before(truncateDay(r.Start)) && !d.After(truncateDay(r.End))
}

// String formata o período no padrão usado em logs e resumos de parâmetros
func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
