package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sarchlab/hsfifo/handshake"
	"github.com/sarchlab/hsfifo/hwfifo"
	"github.com/sarchlab/hsfifo/sim/clocking"
	"github.com/sarchlab/hsfifo/sim/hooking"
	"github.com/sarchlab/hsfifo/sim/simulation"
	"github.com/sarchlab/hsfifo/sim/timing"
)

func newScenarioCmd() *cobra.Command {
	scenarioCmd := &cobra.Command{
		Use:   "scenario",
		Short: "Drive a single FIFO with a scripted input sequence.",
		Long: `Drive a single FIFO with a scripted input sequence and print ` +
			`the committed outputs after every clock edge. Each entry of ` +
			`--writes is the value offered on the write side, or "-" when ` +
			`valid is low. Each entry of --reads is 1 when the consumer is ` +
			`ready and 0 otherwise.`,
		Example: `  hsfifo scenario --capacity 2 --writes 5,7 --reads 0,1`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := parseScenario(cmd)
			if err != nil {
				return err
			}

			rows, err := s.run()
			if err != nil {
				return err
			}

			return printScenario(cmd.OutOrStdout(), rows)
		},
	}

	f := scenarioCmd.Flags()
	f.Int("capacity", 2, "Capacity of the FIFO.")
	f.String("writes", "5,7", "Comma-separated values offered to the FIFO.")
	f.String("reads", "0,1", "Comma-separated consumer ready flags.")
	f.String("preload", "", "Comma-separated values stored before the first tick.")
	f.Int("ticks", 0, "Number of ticks, 0 to run as long as the script. "+
		"Ticks past the script are idle. It cannot be shorter than the script.")

	return scenarioCmd
}

type stimulus struct {
	data  int
	valid bool
	ready bool
}

type scenarioRow struct {
	tick      int
	stimulus  stimulus
	dataOut   int
	validOut  bool
	readyOut  bool
	count     int
	transfers []string
}

type scenario struct {
	capacity int
	preload  []int
	steps    []stimulus
}

func parseScenario(cmd *cobra.Command) (*scenario, error) {
	f := cmd.Flags()
	capacity, _ := f.GetInt("capacity")
	writesArg, _ := f.GetString("writes")
	readsArg, _ := f.GetString("reads")
	preloadArg, _ := f.GetString("preload")
	ticks, _ := f.GetInt("ticks")

	if capacity < 1 {
		return nil, errors.Wrapf(hwfifo.ErrInvalidCapacity,
			"--capacity %d", capacity)
	}

	writes := splitList(writesArg)
	reads := splitList(readsArg)

	scriptLen := max(len(writes), len(reads))
	if ticks <= 0 {
		ticks = scriptLen
	}

	if ticks < scriptLen {
		return nil, errors.Errorf(
			"--ticks %d is shorter than the %d-tick script", ticks, scriptLen)
	}

	s := &scenario{capacity: capacity}

	for _, item := range splitList(preloadArg) {
		v, err := strconv.Atoi(item)
		if err != nil {
			return nil, errors.Wrapf(err, "--preload entry %q", item)
		}

		s.preload = append(s.preload, v)
	}

	for i := 0; i < ticks; i++ {
		var st stimulus

		if i < len(writes) && writes[i] != "-" {
			v, err := strconv.Atoi(writes[i])
			if err != nil {
				return nil, errors.Wrapf(err, "--writes entry %q", writes[i])
			}

			st.data = v
			st.valid = true
		}

		if i < len(reads) {
			ready, err := strconv.ParseBool(reads[i])
			if err != nil {
				return nil, errors.Wrapf(err, "--reads entry %q", reads[i])
			}

			st.ready = ready
		}

		s.steps = append(s.steps, st)
	}

	return s, nil
}

func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	items := strings.Split(s, ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}

	return items
}

func (s *scenario) run() ([]scenarioRow, error) {
	domain := clocking.MakeBuilder().
		WithEngine(timing.NewSerialEngine()).
		Build("Clock")
	sim := simulation.NewSimulation()
	in := handshake.NewWire[int](domain, "In")
	out := handshake.NewWire[int](domain, "Out")

	fifo := hwfifo.MakeBuilder[int]().
		WithSimulation(sim).
		WithDomain(domain).
		WithCapacity(s.capacity).
		Build("FIFO")
	fifo.PlugInput(in)
	fifo.PlugOutput(out)

	err := sim.Elaborate()
	if err != nil {
		return nil, err
	}

	for _, v := range s.preload {
		err = fifo.Preload(v)
		if err != nil {
			return nil, err
		}
	}

	var transfers []string

	fifo.AcceptHook(hooking.NewHookFunc(func(ctx hooking.HookCtx) {
		switch ctx.Pos {
		case hwfifo.HookPosWrite:
			transfers = append(transfers, fmt.Sprintf("write %v", ctx.Item))
		case hwfifo.HookPosRead:
			transfers = append(transfers, fmt.Sprintf("read %v", ctx.Item))
		}
	}))

	domain.Reset()

	rows := make([]scenarioRow, 0, len(s.steps))

	for i, st := range s.steps {
		row := scenarioRow{tick: i, stimulus: st}

		in.Data.Initialize(st.data)
		in.Valid.Initialize(st.valid)
		out.Ready.Initialize(st.ready)

		transfers = nil
		domain.Tick()

		row.dataOut = out.Data.Read()
		row.validOut = out.Valid.Read()
		row.readyOut = in.Ready.Read()
		row.count = fifo.Size()
		row.transfers = transfers
		rows = append(rows, row)
	}

	return rows, nil
}

func printScenario(w io.Writer, rows []scenarioRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "TICK\tDATA IN\tVALID IN\tREADY IN\t"+
		"DATA OUT\tVALID OUT\tREADY OUT\tCOUNT\tTRANSFERS")

	for _, r := range rows {
		dataIn := "-"
		if r.stimulus.valid {
			dataIn = strconv.Itoa(r.stimulus.data)
		}

		dataOut := "-"
		if r.validOut {
			dataOut = strconv.Itoa(r.dataOut)
		}

		transfers := "-"
		if len(r.transfers) > 0 {
			transfers = strings.Join(r.transfers, ", ")
		}

		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t%d\t%d\t%d\t%s\n",
			r.tick, dataIn, bit(r.stimulus.valid), bit(r.stimulus.ready),
			dataOut, bit(r.validOut), bit(r.readyOut), r.count, transfers)
	}

	return tw.Flush()
}

func bit(b bool) int {
	if b {
		return 1
	}

	return 0
}
