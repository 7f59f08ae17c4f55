package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zostay/eletter/address"
	"github.com/zostay/eletter/compose"
	"github.com/zostay/eletter/decompose"
)

var (
	simplifyCmd = &cobra.Command{
		Use:   "simplify message",
		Short: "Shows the text, HTML, and attachments of a simplified message",
		Args:  cobra.ExactArgs(1),
		Run:   RunSimplify,
	}

	unmix bool
	quote bool
)

func init() {
	simplifyCmd.Flags().BoolVar(&unmix, "unmix", false, "allow bodies after attachments")
	simplifyCmd.Flags().BoolVar(&quote, "quote", false, "show the text body quoted for a reply")
	rootCmd.AddCommand(simplifyCmd)
}

func RunSimplify(cmd *cobra.Command, args []string) {
	msgFile, err := os.Open(args[0])
	if err != nil {
		panic(err)
	}
	defer func() { _ = msgFile.Close() }()

	s, err := decompose.ParseSimple(msgFile, unmix, decompose.WithUnlimitedDepth())
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot simplify: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Subject: %s\n", s.Subject)
	fmt.Printf("From: %s\n", address.Format(s.From))
	fmt.Printf("To: %s\n", address.Format(s.To))

	text := s.TextString()
	if quote {
		text = compose.ReplyQuote(text, compose.DefaultQuotePrefix)
	}

	fmt.Printf("\n--- text ---\n%s\n", text)
	fmt.Printf("--- html ---\n%s\n", s.HTMLString())
	fmt.Println("--- attachments ---")
	for _, a := range s.Attachments {
		fmt.Println(describe(a))
	}
}
