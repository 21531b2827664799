// Package month содержит вспомогательные функции для помесячной
// агрегации продаж подписок в административном отчёте.
package month

import "time"

// Names список названий месяцев в порядке следования в отчёте.
var Names = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// SalesRecord хранит количество оформленных подписок по месяцам.
type SalesRecord [12]int

// CountByMonth раскладывает даты начала подписок по месяцам.
// Год не учитывается: отчёт показывает сезонность продаж.
func CountByMonth(startDates []time.Time) SalesRecord {
	var record SalesRecord
	for _, d := range startDates {
		record[int(d.Month())-1]++
	}
	return record
}

// ToMap возвращает запись в виде отображения название месяца -> количество.
func (r SalesRecord) ToMap() map[string]int {
	result := make(map[string]int, len(Names))
	for i, name := range Names {
		result[name] = r[i]
	}
	return result
}
