package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/workdeckhq/workdeck/internal/domain"
)

func printJSON(v any) error {
	b, err := jsonMarshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printKV(rows [][2]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}
	_ = w.Flush()
}

func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println("no results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatMaybeTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t)
}

func printTools(items []domain.Tool) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID,
			item.Name,
			item.Category,
			item.Status,
			strconv.FormatBool(item.IsPublic),
			formatTime(item.LastUpdated),
		})
	}
	printTable([]string{"ID", "NAME", "CATEGORY", "STATUS", "PUBLIC", "LAST_UPDATED"}, rows)
}

func printDocuments(items []domain.Document) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID,
			item.Title,
			item.Category,
			item.Subcategory,
			item.FileType,
			strconv.FormatInt(item.FileSize, 10),
			formatTime(item.LastUpdated),
		})
	}
	printTable([]string{"ID", "TITLE", "CATEGORY", "SUBCATEGORY", "TYPE", "SIZE", "LAST_UPDATED"}, rows)
}

func printCategories(items []domain.Category) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID,
			item.Name,
			item.Description,
		})
	}
	printTable([]string{"ID", "NAME", "DESCRIPTION"}, rows)
}

func printSubcategories(items []domain.Subcategory) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID,
			item.Name,
			item.CategoryID,
		})
	}
	printTable([]string{"ID", "NAME", "CATEGORY_ID"}, rows)
}

func printTasks(items []domain.Task) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID,
			item.Title,
			item.Status,
			item.Priority,
			strconv.Itoa(item.Progress),
			formatMaybeTime(item.DueDate),
		})
	}
	printTable([]string{"ID", "TITLE", "STATUS", "PRIORITY", "PROGRESS", "DUE_DATE"}, rows)
}

func printTaskDetail(item domain.TaskDetail) {
	tags := make([]string, 0, len(item.Tags))
	for _, t := range item.Tags {
		tags = append(tags, t.Tag)
	}
	printKV([][2]string{
		{"id", item.Task.ID},
		{"title", item.Task.Title},
		{"status", item.Task.Status},
		{"priority", item.Task.Priority},
		{"progress", strconv.Itoa(item.Task.Progress)},
		{"due_date", formatMaybeTime(item.Task.DueDate)},
		{"completed_at", formatMaybeTime(item.Task.CompletedAt)},
		{"tags", strings.Join(tags, ",")},
		{"comments", strconv.Itoa(len(item.Comments))},
		{"attachments", strconv.Itoa(len(item.Attachments))},
	})
}
