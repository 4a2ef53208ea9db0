package main

import (
	"fmt"
	"strings"

	"github.com/konstantinfoerster/anki-importer-go/internal/anki"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var showNotes bool

	cmd := &cobra.Command{
		Use:   "inspect [package]",
		Short: "Print decks, note types and notes of an .apkg file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := anki.Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, d := range s.Decks {
				fmt.Fprintf(out, "deck\t%d\t%s\n", d.ID, d.Name)
			}
			for _, m := range s.Models {
				fmt.Fprintf(out, "model\t%d\t%s\t%s\n", m.ID, m.Name, strings.Join(m.Fields, ","))
			}
			fmt.Fprintf(out, "notes\t%d\n", len(s.Notes))
			fmt.Fprintf(out, "cards\t%d\n", s.CardCount)

			if showNotes {
				for _, n := range s.Notes {
					fmt.Fprintf(out, "%s\t%s\t%s\n", n.GUID, strings.Join(n.Fields, " | "), strings.Join(n.Tags, " "))
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&showNotes, "notes", false, "print every note")

	return cmd
}
