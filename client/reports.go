package client

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"ecuestre_go/rules"
)

const dateLayout = "2006-01-02"

// Occupancy ranks horses and teachers by scheduled classes.
type Occupancy struct {
	api *Client
	now func() time.Time
}

func NewOccupancy(api *Client) *Occupancy {
	return &Occupancy{api: api, now: time.Now}
}

// OccupancyReport is the top of each ranking for one window.
type OccupancyReport struct {
	Desde      time.Time
	Hasta      time.Time
	Caballos   []OccupancyRow
	Profesores []OccupancyRow
}

// LastMonth loads the rankings for the month ending today.
func (o *Occupancy) LastMonth(ctx context.Context) (*OccupancyReport, error) {
	hasta := o.now()
	return o.Load(ctx, hasta.AddDate(0, -1, 0), hasta)
}

// Load returns the top five horses and teachers between two dates.
func (o *Occupancy) Load(ctx context.Context, desde, hasta time.Time) (*OccupancyReport, error) {
	q := url.Values{
		"fecha_inicio": {desde.Format(dateLayout)},
		"fecha_fin":    {hasta.Format(dateLayout)},
	}
	var horses, teachers []OccupancyRow
	if err := o.api.get(ctx, "/admin/ocupacion/caballos", q, &horses); err != nil {
		return nil, err
	}
	if err := o.api.get(ctx, "/admin/ocupacion/profesores", q, &teachers); err != nil {
		return nil, err
	}
	count := func(r OccupancyRow) int { return r.ClasesProgramadas }
	return &OccupancyReport{
		Desde:      desde,
		Hasta:      hasta,
		Caballos:   rules.TopN(horses, rules.DefaultTopN, count),
		Profesores: rules.TopN(teachers, rules.DefaultTopN, count),
	}, nil
}

// Payments is the monthly teacher payment report.
type Payments struct {
	api *Client
}

func NewPayments(api *Client) *Payments {
	return &Payments{api: api}
}

// PaymentReport holds one row per teacher plus the grand totals.
type PaymentReport struct {
	Mes     int
	Anio    int
	Pagos   []TeacherPayment
	Totales rules.PaymentTotals
}

func periodQuery(mes, anio int) url.Values {
	return url.Values{"mes": {strconv.Itoa(mes)}, "anio": {strconv.Itoa(anio)}}
}

func (p *Payments) Load(ctx context.Context, mes, anio int) (*PaymentReport, error) {
	if mes < 1 || mes > 12 {
		return nil, rules.ErrInvalidMonth
	}
	var rows []TeacherPayment
	if err := p.api.get(ctx, "/admin/pagos-profesores", periodQuery(mes, anio), &rows); err != nil {
		return nil, err
	}
	totales := rules.SumPayments(rows,
		func(r TeacherPayment) float64 { return r.PagoEscuelita },
		func(r TeacherPayment) float64 { return r.PagoPension })
	return &PaymentReport{
		Mes:     mes,
		Anio:    anio,
		Pagos:   rows,
		Totales: totales,
	}, nil
}

// Export downloads the month's report as an XLSX workbook.
func (p *Payments) Export(ctx context.Context, mes, anio int) ([]byte, error) {
	if mes < 1 || mes > 12 {
		return nil, rules.ErrInvalidMonth
	}
	var file []byte
	if err := p.api.get(ctx, "/admin/pagos-profesores/export", periodQuery(mes, anio), &file); err != nil {
		return nil, err
	}
	return file, nil
}
