package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/cnsipo-attrs/internal/application/auxfill"
	"github.com/turtacn/cnsipo-attrs/pkg/errors"
	"github.com/turtacn/cnsipo-attrs/pkg/types/attrs"
)

// stdinArg makes a parse subcommand read one input per line from stdin.
const stdinArg = "-"

// NewParseCmd creates the parse command and its subcommands.
func NewParseCmd() *cobra.Command {
	var locFile string

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Classify addresses, applicant lists or IPC codes",
		Long: "Run a classifier on the given inputs and print the result. Pass '-' to\n" +
			"read one input per line from standard input.",
	}
	cmd.PersistentFlags().StringVarP(&locFile, "loc-file", "l", "", "country/state/city list (default: built-in)")

	addressCmd := &cobra.Command{
		Use:     "address TEXT...",
		Short:   "Classify applicant addresses into (country, province)",
		Example: "  cnsipo parse address 100080北京市海淀区 日本国大阪府",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			p, err := cliCtx.NewParser(locFile)
			if err != nil {
				return err
			}
			inputs, err := readInputs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			out := make(addressReport, len(inputs))
			for i, in := range inputs {
				out[i] = addressLine{Input: in, AddressResult: p.ParseAddress(in)}
			}
			return PrintResult(cmd, out)
		},
	}

	var address string
	applicantsCmd := &cobra.Command{
		Use:     "applicants NAMES",
		Short:   "Classify a semicolon separated applicant list",
		Example: "  cnsipo parse applicants '清华大学;联合技术公司' --address 美国康涅狄格州",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			p, err := cliCtx.NewParser(locFile)
			if err != nil {
				return err
			}
			names := args[0]
			if names == stdinArg {
				lines, err := readInputs(cmd.InOrStdin(), args)
				if err != nil {
					return err
				}
				names = strings.Join(lines, ";")
			}
			r := p.ParseApplicants(names, address)
			if r.Entities == nil {
				r.Entities = []attrs.Entity{}
			}
			return PrintResult(cmd, applicantReport{ApplicantResult: r, Attrs: auxfill.AttrsMask(r)})
		},
	}
	applicantsCmd.Flags().StringVar(&address, "address", "", "shared address of the applicants")

	ipcCmd := &cobra.Command{
		Use:     "ipc CODES...",
		Short:   "Classify semicolon separated IPC code lists",
		Example: "  cnsipo parse ipc 'G06F15/00;A01B1/00N'",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			p, err := cliCtx.NewParser(locFile)
			if err != nil {
				return err
			}
			inputs, err := readInputs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			out := make(ipcReport, len(inputs))
			for i, in := range inputs {
				out[i] = ipcLine{Input: in, IPCResult: p.ParseIntCl(in)}
			}
			return PrintResult(cmd, out)
		},
	}

	cmd.AddCommand(addressCmd, applicantsCmd, ipcCmd)
	return cmd
}

// readInputs expands a lone "-" argument into the non-blank lines of r.
func readInputs(r io.Reader, args []string) ([]string, error) {
	if len(args) != 1 || args[0] != stdinArg {
		return args, nil
	}
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "failed to read standard input")
	}
	return lines, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reports
// ─────────────────────────────────────────────────────────────────────────────

type addressLine struct {
	Input string `json:"input"`
	attrs.AddressResult
}

type addressReport []addressLine

func (r addressReport) String() string {
	lines := make([]string, len(r))
	for i, l := range r {
		lines[i] = l.Input + "\t" + l.AddressResult.String()
	}
	return strings.Join(lines, "\n")
}

func (r addressReport) TableHeaders() []string { return []string{"INPUT", "COUNTRY", "PROVINCE"} }

func (r addressReport) TableRows() [][]string {
	rows := make([][]string, len(r))
	for i, l := range r {
		rows[i] = []string{l.Input, l.Country, l.Province}
	}
	return rows
}

type applicantReport struct {
	attrs.ApplicantResult
	Attrs int `json:"attrs"`
}

func (r applicantReport) String() string {
	parts := make([]string, len(r.Entities))
	for i, e := range r.Entities {
		parts[i] = e.String()
	}
	return fmt.Sprintf("[%s] attrs=%d", strings.Join(parts, ", "), r.Attrs)
}

func (r applicantReport) TableHeaders() []string { return []string{"NAME", "TYPE", "REGION"} }

func (r applicantReport) TableRows() [][]string {
	rows := make([][]string, len(r.Entities))
	for i, e := range r.Entities {
		rows[i] = []string{e.Name, e.Type.Label(), e.Region}
	}
	return rows
}

type ipcLine struct {
	Input string `json:"input"`
	attrs.IPCResult
}

type ipcReport []ipcLine

func (r ipcReport) String() string {
	lines := make([]string, len(r))
	for i, l := range r {
		lines[i] = fmt.Sprintf("%s\thigh_tech=%t low_tech=%t", l.Input, l.HighTech, l.LowTech)
	}
	return strings.Join(lines, "\n")
}

func (r ipcReport) TableHeaders() []string { return []string{"INPUT", "HIGH_TECH", "LOW_TECH"} }

func (r ipcReport) TableRows() [][]string {
	rows := make([][]string, len(r))
	for i, l := range r {
		rows[i] = []string{l.Input, strconv.FormatBool(l.HighTech), strconv.FormatBool(l.LowTech)}
	}
	return rows
}

//Personal.AI order the ending
