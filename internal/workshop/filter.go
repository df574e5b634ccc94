package workshop

import (
	"fmt"
	"strings"

	"github.com/linemk/printshop/internal/domain/models"
)

const (
	DefaultPageSize = 25
	StatusAll       = "all"
)

// Filter - фильтр списка задач на клиенте
type Filter struct {
	Status string // статус или "all"
	Query  string
}

// searchText - "#id status printer order", по нему идёт поиск
func searchText(j models.PrintJob) string {
	var printer, order string
	if j.PrinterID != nil {
		printer = fmt.Sprintf("%d", *j.PrinterID)
	}
	if j.OrderID != nil {
		order = fmt.Sprintf("%d", *j.OrderID)
	}
	return strings.ToLower(fmt.Sprintf("#%d %s %s %s", j.ID, j.Status, printer, order))
}

func (f Filter) Match(j models.PrintJob) bool {
	if f.Status != "" && f.Status != StatusAll && string(j.Status) != f.Status {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	return q == "" || strings.Contains(searchText(j), q)
}

func (f Filter) Apply(jobs []models.PrintJob) []models.PrintJob {
	out := make([]models.PrintJob, 0, len(jobs))
	for _, j := range jobs {
		if f.Match(j) {
			out = append(out, j)
		}
	}
	return out
}

// Page - одна страница отфильтрованного списка
type Page struct {
	Jobs       []models.PrintJob `json:"jobs"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	Total      int               `json:"total"`
}

// Paginate: номер страницы зажимается в [1, TotalPages], TotalPages >= 1
func Paginate(jobs []models.PrintJob, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(jobs)
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := min(start+size, total)
	return Page{
		Jobs:       jobs[start:end],
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}
}
