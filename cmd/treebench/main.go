// Command treebench measures how long a frame takes to propagate list changes into
// a widget tree.
//
//	treebench --sizes 10,100,1000 --rounds 200
package main

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/npillmayer/reactree/runtime"
	"github.com/npillmayer/reactree/state"
	"github.com/urfave/cli/v3"
)

//go:embed fixture.yaml
var fixture []byte

const (
	sizesKey  = "sizes"
	roundsKey = "rounds"
	checksKey = "checks"
)

func main() {
	cmd := &cli.Command{
		Name:  "treebench",
		Usage: "Benchmark change propagation for a list rendered by a for-loop",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  sizesKey,
				Usage: "Comma separated list sizes",
				Value: "10,100,1000",
			},
			&cli.UintFlag{
				Name:  roundsKey,
				Usage: "Number of frames per operation and size",
				Value: 100,
			},
			&cli.BoolFlag{
				Name:  checksKey,
				Usage: "Check tree consistency after every frame",
			},
		},
		Action: bench,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// operation changes the list before a frame.
type operation struct {
	name  string
	apply func(list state.List[int], round int)
}

var operations = []operation{
	{"set", func(list state.List[int], round int) {
		list.Set(round%list.Len(), round)
	}},
	{"insert front", func(list state.List[int], round int) {
		list.Insert(0, round)
	}},
	{"insert middle", func(list state.List[int], round int) {
		list.Insert(list.Len()/2, round)
	}},
	{"remove front", func(list state.List[int], round int) {
		list.Remove(0)
	}},
	{"push+pop", func(list state.List[int], round int) {
		list.Push(round)
		list.Pop()
	}},
}

func bench(ctx context.Context, cmd *cli.Command) error {
	sizes, err := parseSizes(cmd.String(sizesKey))
	if err != nil {
		return err
	}
	rounds := int(cmd.Uint(roundsKey))
	tbl := table.NewWriter()
	tbl.SetTitle("Frame times")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "records", "avg", "min", "p75", "p99", "max"})
	for _, size := range sizes {
		for _, op := range operations {
			tach, records, err := measure(size, rounds, op, cmd.Bool(checksKey))
			if err != nil {
				return fmt.Errorf("%s with %d elements: %w", op.name, size, err)
			}
			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("%s: %s", op.name, humanize.Comma(int64(size))),
					humanize.Comma(int64(records)),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}
	tbl.Render()
	return nil
}

func measure(size, rounds int, op operation, checks bool) (*tachymeter.Tachymeter, int, error) {
	rt := runtime.New(runtime.WithCapacity(4*(size+rounds)), runtime.WithConsistencyChecks(checks))
	xs := make([]int, size)
	for i := range xs {
		xs[i] = i
	}
	list := state.NewList(rt.Store(), xs...)
	rt.Bind("list", list.Key())
	if err := rt.MountYAML(fixture); err != nil {
		return nil, 0, err
	}
	tach := tachymeter.New(&tachymeter.Config{Size: rounds})
	records := 0
	for round := 0; round < rounds; round++ {
		if list.Len() == 0 {
			list.Push(round)
			rt.Frame()
		}
		op.apply(list, round)
		start := time.Now()
		r := rt.Frame()
		tach.AddTime(time.Since(start))
		if r.Err != nil {
			return nil, 0, r.Err
		}
		records += r.Records
	}
	return tach, records, nil
}

func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, field := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid list size %q", field)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}
