package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ehr/carelog/internal/config"
	"github.com/ehr/carelog/internal/match"
)

// filePatient is one entry of a patients export. Fields other than the three
// compared ones are printed back unchanged.
//
// Legacy exports use Portuguese keys: nome, data_nascimento and nome_da_mae.
// They are read when the English key is absent or not a string.
type filePatient map[string]any

func (p filePatient) field(keys ...string) string {
	for _, key := range keys {
		if s, ok := p[key].(string); ok {
			return s
		}
	}
	return ""
}

func (p filePatient) MatchName() string       { return p.field("name", "nome") }
func (p filePatient) MatchBirthDate() string  { return p.field("birth_date", "data_nascimento") }
func (p filePatient) MatchMotherName() string { return p.field("mother_name", "nome_da_mae") }

type matchOutput struct {
	Patient filePatient           `json:"patient"`
	Scores  match.FormattedScores `json:"scores"`
}

func matchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Search a patients JSON export by name, birth date and mother's name",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			cutoff, _ := cmd.Flags().GetFloat64("cutoff")
			if !cmd.Flags().Changed("cutoff") {
				cutoff = configuredCutoff()
			}

			patients, err := loadPatients(file)
			if err != nil {
				return err
			}

			q := match.Query{}
			q.Name, _ = cmd.Flags().GetString("name")
			q.BirthDate, _ = cmd.Flags().GetString("birth-date")
			q.MotherName, _ = cmd.Flags().GetString("mother-name")
			if q == (match.Query{}) {
				fmt.Fprintln(cmd.OutOrStdout(), "--- Patient search ---")
				if q, err = promptQuery(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
					return err
				}
			}

			return writeMatch(cmd.OutOrStdout(), match.FindBestMatch(q, patients, cutoff))
		},
	}
	cmd.Flags().String("file", "patients.json", "Path to a JSON array of patient records (keys name/birth_date/mother_name, or nome/data_nascimento/nome_da_mae)")
	cmd.Flags().String("name", "", "Full name")
	cmd.Flags().String("birth-date", "", "Birth date (YYYY-MM-DD)")
	cmd.Flags().String("mother-name", "", "Mother's name")
	cmd.Flags().Float64("cutoff", match.DefaultCutoff, "Minimum total score, in percent")
	return cmd
}

// configuredCutoff honours MATCH_CUTOFF when a configuration can be loaded.
func configuredCutoff() float64 {
	cfg, err := config.Load()
	if err != nil {
		return match.DefaultCutoff
	}
	return cfg.MatchCutoff
}

func loadPatients(path string) ([]filePatient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file %q not found", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var patients []filePatient
	if err := json.Unmarshal(data, &patients); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return patients, nil
}

func promptQuery(in io.Reader, out io.Writer) (match.Query, error) {
	r := bufio.NewReader(in)
	ask := func(label string) (string, error) {
		fmt.Fprint(out, label)
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	var (
		q   match.Query
		err error
	)
	if q.Name, err = ask("Full name: "); err != nil {
		return q, err
	}
	if q.BirthDate, err = ask("Birth date (YYYY-MM-DD): "); err != nil {
		return q, err
	}
	if q.MotherName, err = ask("Mother's name: "); err != nil {
		return q, err
	}
	return q, nil
}

func writeMatch(w io.Writer, res match.Result[filePatient]) error {
	if !res.Matched {
		_, err := fmt.Fprintf(w, "no acceptable match (closest was %s)\n", match.Percent(res.Scores.Total))
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(matchOutput{Patient: res.Record, Scores: res.Scores.Formatted()})
}
