package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	domain "github.com/rgoodwin/ebay-listing-migrator/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printOfferTable(offers []domain.Offer) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("LISTING ID\tTITLE\tPRICE\tQTY\tCONDITION\tCATEGORY\n")
	for i := range offers {
		o := &offers[i]
		tw.writef("%s\t%s\t%s %s\t%d\t%s\t%s\n",
			o.ListingID,
			truncate(o.Title, 40),
			o.Price.Value,
			o.Price.Currency,
			o.Quantity,
			o.ConditionID,
			o.CategoryID,
		)
	}
	return tw.finish()
}

func printOfferDetail(o *domain.Offer) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Listing ID:\t%s\n", o.ListingID)
	tw.writef("SKU:\t%s\n", o.SKU)
	tw.writef("Title:\t%s\n", o.Title)
	tw.writef("Price:\t%s %s\n", o.Price.Value, o.Price.Currency)
	tw.writef("Quantity:\t%d\n", o.Quantity)
	tw.writef("Condition:\t%s\n", o.ConditionID)
	tw.writef("Category:\t%s\n", o.CategoryID)
	tw.writef("Format:\t%s\n", o.ListingFormat)
	tw.writef("Shipping Policy:\t%s\n", o.ShippingPolicyID)
	tw.writef("Payment Policy:\t%s\n", o.PaymentPolicyID)
	tw.writef("Return Policy:\t%s\n", o.ReturnPolicyID)
	for name, value := range o.ItemSpecifics {
		tw.writef("%s:\t%s\n", name, value)
	}
	for _, u := range o.ImageURLs {
		tw.writef("Image:\t%s\n", u)
	}
	return tw.finish()
}

func printPolicyTriple(t *domain.PolicyTriple) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Shipping Policy:\t%s\n", t.ShippingPolicyID)
	tw.writef("Payment Policy:\t%s\n", t.PaymentPolicyID)
	tw.writef("Return Policy:\t%s\n", t.ReturnPolicyID)
	return tw.finish()
}

func printOutcome(o *domain.MigrationOutcome) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Migrated:\t%d\n", o.Succeeded)
	tw.writef("Failed:\t%d\n", o.Failed)
	for i := range o.Errors {
		tw.writef("Error:\t%s\n", o.Errors[i].Error())
	}
	if o.Failed > 0 {
		tw.writef("Warning:\tfailed creations may have left inventory items without offers in the target environment\n")
	}
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
