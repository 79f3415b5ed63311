package report

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/finpro/finpro/pkg/aggregate"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Renderer interface {
	Render(report Report) (string, error)
}

// CsvRenderer writes each selected section as a titled block followed by an empty row.
type CsvRenderer struct{}

func NewCsvRenderer() *CsvRenderer {
	return &CsvRenderer{}
}

func (r *CsvRenderer) Render(report Report) (string, error) {
	data := make([][]string, 0)
	options := report.Options

	if options.IncludeSummary {
		s := report.Summary
		data = append(data,
			[]string{"Resumo", s.Period},
			[]string{"Receitas", money(s.TotalIncome)},
			[]string{"Despesas", money(s.TotalExpense)},
			[]string{"Saldo", money(s.Balance)},
			[]string{"Transações", strconv.Itoa(s.TransactionCount)},
			[]string{},
		)
	}
	if options.IncludeCharts {
		data = append(data, []string{"Mês", "Receitas", "Despesas", "Saldo"})
		for _, row := range report.Monthly {
			data = append(data, []string{row.Label, money(row.ValueA), money(row.ValueB), money(row.Difference)})
		}
		data = append(data, []string{})
	}
	if options.IncludeCategories {
		data = append(data, categoryRows("Despesas por categoria", report.Categories.Expenses)...)
		data = append(data, categoryRows("Receitas por categoria", report.Categories.Incomes)...)
	}
	if options.IncludeTransactions {
		data = append(data, []string{"Data", "Tipo", "Categoria", "Valor", "Destino", "Conta", "Observação"})
		for _, t := range report.Transactions {
			category := aggregate.Uncategorized
			if t.Category != nil && t.Category.Name != "" {
				category = t.Category.Name
			}
			data = append(data, []string{
				t.Date.Format("02/01/2006"),
				string(t.Type),
				category,
				money(t.Amount),
				t.Destination,
				t.Account,
				t.Observation,
			})
		}
		data = append(data, []string{})
	}
	if options.IncludePiggyBanks {
		data = append(data, []string{"Cofrinho", "Meta", "Guardado", "Progresso", "Status", "Data alvo"})
		for _, p := range report.PiggyBanks {
			data = append(data, []string{
				p.PiggyBank.Name,
				money(p.PiggyBank.SavingsGoal),
				money(p.PiggyBank.CurrentAmount),
				strconv.Itoa(p.ProgressPercentage) + "%",
				p.Status.Label(),
				p.PiggyBank.TargetDate.Format("02/01/2006"),
			})
		}
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func categoryRows(title string, buckets []aggregate.CategoryBucket) [][]string {
	rows := make([][]string, 0, len(buckets)+2)
	rows = append(rows, []string{title, "Total", "Percentual", "Quantidade"})
	for _, bucket := range buckets {
		rows = append(rows, []string{
			bucket.CategoryName,
			money(bucket.Total),
			strconv.Itoa(bucket.Percentage) + "%",
			strconv.Itoa(bucket.Count),
		})
	}
	return append(rows, []string{})
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func FileName(now time.Time) string {
	return "relatorio-financeiro-" + now.Format(time.DateOnly) + ".csv"
}
