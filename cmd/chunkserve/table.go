package main

import (
	"fmt"

	"chunkserve/pkg/types"
	"chunkserve/pkg/utils"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

func renderFilesTable(records []types.FileRecord) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#7571f9"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return lipgloss.NewStyle().
					Foreground(lipgloss.Color("#ffffff")).
					Bold(true).
					Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("FILE ID", "NAME", "SIZE", "EST. ENCODED", "CHUNKS")

	for _, record := range records {
		t.Row(
			string(record.ID),
			record.Name,
			utils.FormatSize(record.Size),
			utils.FormatSize(record.EncodedSize),
			fmt.Sprintf("%d", record.DefaultChunks),
		)
	}

	if len(records) == 0 {
		return "No files found in input folder."
	}
	return t.Render()
}
