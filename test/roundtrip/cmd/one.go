package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/zostay/eletter/compose"
	"github.com/zostay/eletter/decompose"
)

var (
	oneCmd = &cobra.Command{
		Use:   "one message",
		Short: "Shows the diff of the item trees from a single message round-trip",
		Args:  cobra.ExactArgs(1),
		Run:   RunOne,
	}

	smooth bool
)

func init() {
	oneCmd.Flags().BoolVar(&smooth, "smooth", false, "smooth the item tree before composing")
	rootCmd.AddCommand(oneCmd)
}

func RunOne(cmd *cobra.Command, args []string) {
	path := args[0]
	msgFile, err := os.Open(path)
	if err != nil {
		panic(err)
	}
	defer func() { _ = msgFile.Close() }()

	el, err := decompose.Parse(msgFile, decompose.WithUnlimitedDepth())
	if err != nil {
		panic(err)
	}

	if smooth {
		el.Content = decompose.Smooth(el.Content)
	}

	rtFile, err := os.CreateTemp(os.TempDir(), "rtmsg-")
	if err != nil {
		panic(err)
	}
	defer func() { _ = rtFile.Close() }()

	err = compose.Write(rtFile, el.Content, &el.Envelope)
	if err != nil {
		panic(err)
	}

	_, err = rtFile.Seek(0, 0)
	if err != nil {
		panic(err)
	}

	rt, err := decompose.Parse(rtFile, decompose.WithUnlimitedDepth())
	if err != nil {
		panic(err)
	}

	fmt.Printf("path = %s\n", path)
	fmt.Printf("tmp  = %s\n", rtFile.Name())

	before, after := &strings.Builder{}, &strings.Builder{}
	if err := Dump(before, el.Content); err != nil {
		panic(err)
	}
	if err := Dump(after, rt.Content); err != nil {
		panic(err)
	}

	if before.String() == after.String() {
		fmt.Print(before.String())
		return
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before.String(), after.String())
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	fmt.Print(dmp.DiffPrettyText(diffs))
	os.Exit(1)
}
