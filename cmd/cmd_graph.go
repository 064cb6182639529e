package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dylandreimerink/bfdb/analyse"
	"github.com/dylandreimerink/bfdb/pkg/program"
	"github.com/emicklei/dot"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

func graphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph {source file}",
		Short: "Generate a control-flow graph for a program",
		Long: "This command loads the program and creates a control-flow graph of it. The program is broken up " +
			"into 'blocks' of code by the loop instructions. Red arrows indicate the non-branching path, green " +
			"arrows indicate the branching path, which is taken when a '[' sees a zero cell or a ']' sees a " +
			"non-zero cell.\n\n" +
			"If no flags are specified the command will attempt to render the graph as SVG and open it in the browser.",
		RunE: runGraph,
		Args: cobra.ExactArgs(1),
	}

	f := cmd.Flags()

	f.StringVarP(&graphOutput, "output", "o", "", "output to given file path or - for stdout, instead of opening "+
		"in browser")
	f.StringVarP(&graphOutputFormat, "format", "f", "svg", "The output format: dot, svg, pdf or png")
	f.BoolVar(&graphPaths, "paths", false, "Print the possible paths through the blocks instead of a graph, every "+
		"loop is followed at most twice")
	f.IntVar(&graphMaxPaths, "max-paths", analyse.DefaultMaxPermutations, "The maximum amount of paths printed by "+
		"--paths")

	return cmd
}

var (
	graphOutput       string
	graphOutputFormat string
	graphPaths        bool
	graphMaxPaths     int
)

func runGraph(cmd *cobra.Command, args []string) error {
	prog, _, err := program.LoadFile(args[0])
	if err != nil {
		return err
	}

	if graphPaths {
		blocks := analyse.ProgramBlocks(prog)
		perms, truncated := analyse.FlowPermutations(blocks[0], graphMaxPaths)
		for _, perm := range perms {
			fmt.Fprintln(cmd.OutOrStdout(), perm)
		}
		if truncated {
			fmt.Fprintf(cmd.ErrOrStderr(), "Only the first %d paths are shown, use --max-paths to see more\n",
				len(perms))
		}
		return nil
	}

	graph := ProgramToGraph(prog)

	switch graphOutputFormat {
	case "dot":
		if graphOutput == "-" {
			fmt.Fprintln(cmd.OutOrStdout(), graph.String())
			return nil
		}

		var f *os.File
		if graphOutput == "" {
			f, err = os.CreateTemp(os.TempDir(), "bfdb-graph-*.dot.txt")
			if err != nil {
				return fmt.Errorf("create tmp: %w", err)
			}
		} else {
			f, err = os.Create(graphOutput)
			if err != nil {
				return fmt.Errorf("create file: %w", err)
			}
		}
		defer f.Close()

		_, err = io.Copy(f, strings.NewReader(graph.String()))
		if err != nil {
			return fmt.Errorf("copy: %w", err)
		}

		if graphOutput == "" {
			return browser.OpenFile(f.Name())
		}

	case "png", "svg", "pdf":
		dotF, err := os.CreateTemp(os.TempDir(), "bfdb-graph-*.dot")
		if err != nil {
			return fmt.Errorf("create tmp: %w", err)
		}
		defer os.Remove(dotF.Name())

		_, err = io.Copy(dotF, strings.NewReader(graph.String()))
		dotF.Close()
		if err != nil {
			return fmt.Errorf("copy: %w", err)
		}

		var (
			dotCmd *exec.Cmd
			imgF   *os.File
		)
		switch graphOutput {
		case "-":
			dotCmd = exec.Command("dot", fmt.Sprintf("-T%s", graphOutputFormat), dotF.Name())
			dotCmd.Stdout = cmd.OutOrStdout()
		case "":
			imgF, err = os.CreateTemp(os.TempDir(), fmt.Sprintf("bfdb-graph-*.%s", graphOutputFormat))
			if err != nil {
				return fmt.Errorf("create tmp: %w", err)
			}
			imgF.Close()

			dotCmd = exec.Command(
				"dot",
				fmt.Sprintf("-T%s", graphOutputFormat),
				fmt.Sprintf("-o%s", imgF.Name()),
				dotF.Name(),
			)
		default:
			dotCmd = exec.Command(
				"dot",
				fmt.Sprintf("-T%s", graphOutputFormat),
				fmt.Sprintf("-o%s", graphOutput),
				dotF.Name(),
			)
		}

		err = dotCmd.Run()
		if err != nil {
			return fmt.Errorf("dot: %w", err)
		}

		if graphOutput == "" {
			return browser.OpenFile(imgF.Name())
		}

	default:
		return fmt.Errorf("unknown output format '%s', pick from: dot, svg, pdf, png", graphOutputFormat)
	}

	return nil
}

// ProgramToGraph creates a graph with a node per block, labeled with the block name and its instructions. Blocks are
// grouped in a cluster per source line of their first instruction.
func ProgramToGraph(prog program.Program) *dot.Graph {
	blocks := analyse.ProgramBlocks(prog)

	graph := dot.NewGraph(dot.Directed)
	graph.Attr("splines", "ortho")
	graph.Attr("nodesep", "0.5")
	graph.Attr("ranksep", "0.3")

	lineGraphs := make(map[int]*dot.Graph)
	blockNodes := make(map[*analyse.ProgBlock]dot.Node)
	for _, block := range blocks {
		line := block.Block[0].Line

		lineGraph, found := lineGraphs[line]
		if !found {
			name := fmt.Sprintf("line %d", line)
			if line == 0 {
				name = "end"
			}

			lineGraph = graph.Subgraph(name, dot.ClusterOption{})
			lineGraph.Attr("color", "blue")
			lineGraphs[line] = lineGraph
		}

		// Node IDs are generated, so the block name goes into the label
		var label strings.Builder
		label.WriteString(fmt.Sprintf("\"Block %d\\l", block.Index))
		for i, inst := range block.Block {
			// Jump targets are left out, the edges show them
			label.WriteString(fmt.Sprintf("%d %s %s\\l", block.Start+i, inst.Op, inst.Op.Name()))
		}
		label.WriteString("\"")

		blockNode := lineGraph.Node(fmt.Sprintf("Block %d", block.Index))

		blockNode.Attr("label", dot.Literal(label.String()))
		blockNode.Attr("shape", "box")

		blockNodes[block] = blockNode
	}

	for _, block := range blocks {
		if block.Branch != nil {
			graph.Edge(blockNodes[block], blockNodes[block.Branch]).
				Attr("color", "darkgreen")
		}

		if block.NoBranch != nil {
			graph.Edge(blockNodes[block], blockNodes[block.NoBranch]).
				Attr("color", "red")
		}
	}

	return graph
}
