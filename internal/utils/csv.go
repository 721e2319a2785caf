package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"adaptiveMABot/internal/domain"
	"adaptiveMABot/internal/ports"
)

const dateLayout = "2006-01-02"

// ReadBarsFromCSV loads a daily price history written by the fetcher (or
// any table with a Date,Open,High,Low,Close,Volume header). Rows are
// sorted by date defensively; a duplicate date fails with
// ports.ErrDataIntegrity.
func ReadBarsFromCSV(filename string) ([]*domain.Bar, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%w: %s is empty", ports.ErrInsufficientData, filename)
	}

	bars := make([]*domain.Bar, 0, len(records)-1)
	for i, rec := range records[1:] { // skip header
		if len(rec) < 6 {
			return nil, fmt.Errorf("%s row %d: expected 6 columns, got %d", filename, i+2, len(rec))
		}
		bar, err := parseBar(rec)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", filename, i+2, err)
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	for i := 1; i < len(bars); i++ {
		if bars[i].Date.Equal(bars[i-1].Date) {
			return nil, fmt.Errorf("%w: duplicate date %s in %s", ports.ErrDataIntegrity,
				bars[i].Date.Format(dateLayout), filename)
		}
	}
	return bars, nil
}

func parseBar(rec []string) (*domain.Bar, error) {
	date, err := time.ParseInLocation(dateLayout, rec[0], time.UTC)
	if err != nil {
		// Fetched files may carry a full timestamp.
		date, err = time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", rec[0])
		}
		date = date.UTC().Truncate(24 * time.Hour)
	}

	fields := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(rec[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", rec[i+1])
		}
		fields[i] = v
	}
	return &domain.Bar{
		Date:   date,
		Open:   fields[0],
		High:   fields[1],
		Low:    fields[2],
		Close:  fields[3],
		Volume: fields[4],
	}, nil
}

// WriteBarsToCSV saves a daily price history in the format ReadBarsFromCSV
// expects.
func WriteBarsToCSV(bars []*domain.Bar, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"Date", "Open", "High", "Low", "Close", "Volume"})
	for _, b := range bars {
		writer.Write([]string{
			b.Date.Format(dateLayout),
			formatPrice(b.Open),
			formatPrice(b.High),
			formatPrice(b.Low),
			formatPrice(b.Close),
			formatPrice(b.Volume),
		})
	}
	return writer.Error()
}

// WriteResultsToCSV saves a ranked result table best-first; dashboards
// read row 0 as "best".
func WriteResultsToCSV(rows []domain.ResultRow, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"Symbol", "MA_Type", "MA_Pair", "Return", "WinRate", "Sharpe", "MaxDD", "Trades", "Volatility", "TrendStrength"})
	for _, r := range rows {
		writer.Write([]string{
			r.Symbol,
			string(r.MAType),
			r.MAPair,
			formatRounded(r.Return),
			formatRounded(r.WinRate),
			formatRounded(r.Sharpe),
			formatRounded(r.MaxDD),
			strconv.Itoa(r.Trades),
			formatRounded(r.Volatility),
			formatRounded(r.TrendStrength),
		})
	}
	return writer.Error()
}

// WriteTradesToCSV saves a trade ledger.
func WriteTradesToCSV(trades []*domain.Trade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"Symbol", "EntryDate", "ExitDate", "EntryPrice", "ExitPrice", "NetReturn", "ExitReason"})
	for _, t := range trades {
		writer.Write([]string{
			t.Symbol,
			t.EntryDate.Format(dateLayout),
			t.ExitDate.Format(dateLayout),
			formatPrice(t.EntryPrice),
			formatPrice(t.ExitPrice),
			strconv.FormatFloat(t.NetReturn, 'f', 6, 64),
			string(t.CloseReason),
		})
	}
	return writer.Error()
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatRounded renders report values with the two decimals they were
// rounded to, keeping reruns byte-identical.
func formatRounded(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
