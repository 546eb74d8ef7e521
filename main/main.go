package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path"
	"runtime/pprof"
	"strings"

	"github.com/phil-mansfield/lhetruth/analyze"
	"github.com/phil-mansfield/lhetruth/io"
	"github.com/phil-mansfield/lhetruth/lhe"
	"github.com/phil-mansfield/lhetruth/logs"
	"github.com/phil-mansfield/lhetruth/particle"
)

type FileGroup struct {
	log, prof *os.File
}

func (fg *FileGroup) Close() {
	if fg.log != nil {
		logs.SetOutput(os.Stderr)
		err := fg.log.Close()
		if err != nil { log.Fatal(err.Error()) }
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		if err != nil { log.Fatal(err.Error()) }
	}
}

// setup applies the ambient options shared by every mode.
func setup(con *io.SharedConfig) *FileGroup {
	fg := &FileGroup{}
	logs.SetVerbose(con.Verbose)

	if con.ValidLogFile() {
		var err error
		fg.log, err = os.Create(con.LogFile)
		if err != nil { log.Fatal(err.Error()) }
		logs.SetOutput(fg.log)
	}

	if con.ValidProfileFile() {
		var err error
		fg.prof, err = os.Create(con.ProfileFile)
		if err != nil { log.Fatal(err.Error()) }
		if err = pprof.StartCPUProfile(fg.prof); err != nil {
			log.Fatal(err.Error())
		}
	}

	return fg
}

func main() {
	var (
		convert, analyzeCfg string
		exampleConfig string
	)
	vars := map[string]*string {
		"Convert": &convert,
		"Analyze": &analyzeCfg,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(
		&convert, "Convert", "",
		"Configuration file for [Convert] mode.",
	)
	flag.StringVar(
		&analyzeCfg, "Analyze", "",
		"Configuration file for [Analyze] mode.",
	)
	flag.StringVar(
		&exampleConfig,
		"ExampleConfig", "", "Prints an example configuration file of the " +
			"specified type to stdout. Accepted arguments are 'Convert', " +
			"'Analyze', and 'Species'.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil { log.Fatal(err.Error()) }

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch modeName {
	case "Convert":
		con, err := io.ReadConvertConfig(convert)
		if err != nil { log.Fatal(err.Error()) }
		fg := setup(&con.SharedConfig)
		err = convertMain(ctx, con)
		fg.Close()
		if err != nil { log.Fatal(err.Error()) }

	case "Analyze":
		con, err := io.ReadAnalyzeConfig(analyzeCfg)
		if err != nil { log.Fatal(err.Error()) }
		fg := setup(&con.SharedConfig)
		err = analyzeMain(con)
		fg.Close()
		if err != nil { log.Fatal(err.Error()) }

	case "ExampleConfig":
		switch exampleConfig {
		case "Convert":
			fmt.Println(io.ExampleConvertFile)
		case "Analyze":
			fmt.Println(io.ExampleAnalyzeFile)
		case "Species":
			fmt.Println(particle.ExampleSpeciesFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. Only recognized " +
					"arguments are 'Convert', 'Analyze', and 'Species'.",
			)
		}
	default:
		panic("Impossible")
	}
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" { setNames = append(setNames, name) }
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but lhetruth " +
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func convertMain(ctx context.Context, con *io.ConvertConfig) error {
	species, err := con.Species()
	if err != nil { return err }
	statuses, err := con.StatusList()
	if err != nil { return err }
	format, err := con.Format()
	if err != nil { return err }

	c := lhe.NewConverter(species, statuses)
	c.MaxEvents = con.MaxEvents
	c.ProgressEvery = con.ProgressEvery

	out := io.OutputPath(con.Output, format)
	w, err := io.CreateEventFile(out, format)
	if err != nil { return err }

	n, err := c.ConvertFile(ctx, con.Input, w)
	if err != nil {
		w.Close()
		return err
	}
	if err = w.Close(); err != nil { return err }

	fmt.Printf("%d events written to %s.\n", n, out)
	return nil
}

func analyzeMain(con *io.AnalyzeConfig) error {
	format, err := con.Format()
	if err != nil { return err }
	species, err := con.Species()
	if err != nil { return err }

	r, err := io.OpenEventFile(con.Input, format, species)
	if err != nil { return err }
	defer r.Close()

	a := analyze.NewTopAnalysis(con.Weight())
	n, err := a.Run(r)
	if err != nil { return err }

	fmt.Printf(
		"%d events read, %d W b pairs from top decays found.\n", n, a.Pairs(),
	)
	for _, h := range a.Hists1D() {
		fmt.Println(analyze.Summary(h))
	}
	for _, h := range a.Hists2D() {
		fmt.Println(analyze.Summary2D(h))
	}

	if con.Output == "" { return nil }
	if err := os.MkdirAll(con.Output, 0777); err != nil { return err }
	err = a.WriteHistFile(path.Join(con.Output, analyze.HistFileName))
	if err != nil { return err }

	if con.Plot {
		a.Plot(con.Output)
		analyze.Execute()
	}
	return nil
}
