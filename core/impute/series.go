package impute

import (
	"github.com/huangsam/lagscan/schema"
)

// ImputeSeries fills the given series jointly and labels each result with
// the positions that were estimated.
func (k KNNImputer) ImputeSeries(series ...schema.TimeSeries) ([]schema.ImputedSeries, error) {
	columns := make([][]float64, len(series))
	for j, s := range series {
		columns[j] = s.Values()
	}
	filled, err := k.Impute(columns...)
	if err != nil {
		return nil, err
	}

	out := make([]schema.ImputedSeries, len(series))
	for j, s := range series {
		imputed := make([]bool, s.Len())
		for i, o := range s.Observations {
			imputed[i] = !o.Valid
		}
		out[j] = schema.ImputedSeries{Name: s.Name, Values: filled[j], Imputed: imputed}
	}
	return out, nil
}
