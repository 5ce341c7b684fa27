package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"listing-review/internal/authz"
	"listing-review/internal/domain"
	"listing-review/internal/lifecycle"

	"github.com/shopspring/decimal"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func money(price float64) string {
	return decimal.NewFromFloat(price).StringFixed(2)
}

func printIdentity(w io.Writer, id domain.Identity, landing authz.View) {
	tw := table(w)
	fmt.Fprintf(tw, "id\t%s\n", id.ID)
	fmt.Fprintf(tw, "email\t%s\n", id.Email)
	fmt.Fprintf(tw, "role\t%s\n", id.Role)
	fmt.Fprintf(tw, "expires\t%s\n", id.ExpiresAt.Local().Format(time.RFC1123))
	fmt.Fprintf(tw, "landing\t%s\n", landing)
	tw.Flush()
}

func printProducts(w io.Writer, products []*domain.Product) {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tDEPARTMENT")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.ProductName, money(p.Price), p.Department)
	}
	tw.Flush()
}

func printDraft(w io.Writer, d *lifecycle.Draft) {
	tw := table(w)
	fmt.Fprintf(tw, "id\t%s\n", d.ProductID())
	for _, f := range lifecycle.Fields {
		fmt.Fprintf(tw, "%s\t%s\n", f, d.Get(f))
	}
	tw.Flush()
}

func printReview(w io.Writer, r *domain.Review) {
	tw := table(w)
	fmt.Fprintf(tw, "review\t%s\n", r.ID)
	fmt.Fprintf(tw, "status\t%s\n", r.Status)
	fmt.Fprintf(tw, "product\t%s\n", r.ProductID)
	fmt.Fprintf(tw, "submitted by\t%s\n", r.PersonID)
	if r.DecidedBy != nil {
		fmt.Fprintf(tw, "decided by\t%s\n", *r.DecidedBy)
	}
	d := r.ProductDetails
	fmt.Fprintf(tw, "productName\t%s\n", d.ProductName)
	fmt.Fprintf(tw, "price\t%s\n", money(d.Price))
	fmt.Fprintf(tw, "productDescription\t%s\n", d.ProductDescription)
	fmt.Fprintf(tw, "department\t%s\n", d.Department)
	fmt.Fprintf(tw, "image\t%s\n", d.Image)
	tw.Flush()
}

func printReviews(w io.Writer, reviews []*domain.Review) {
	if len(reviews) == 0 {
		fmt.Fprintln(w, "no reviews")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "REVIEW\tSTATUS\tPRODUCT\tNAME\tPRICE\tSUBMITTED BY")
	for _, r := range reviews {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Status, r.ProductID, r.ProductDetails.ProductName, money(r.ProductDetails.Price), r.PersonID)
	}
	tw.Flush()
}

func printPartition(w io.Writer, p domain.ReviewPartition) {
	for _, group := range []struct {
		title   string
		reviews []*domain.Review
	}{
		{"pending", p.Pending},
		{"approved", p.Approved},
		{"rejected", p.Rejected},
	} {
		fmt.Fprintf(w, "%s (%d)\n", group.title, len(group.reviews))
		for _, r := range group.reviews {
			fmt.Fprintf(w, "  %s  %s  %s\n", r.ID, r.ProductDetails.ProductName, money(r.ProductDetails.Price))
		}
	}
}

func printStats(w io.Writer, s domain.UserStats) {
	tw := table(w)
	fmt.Fprintf(tw, "total\t%d\n", s.Total)
	fmt.Fprintf(tw, "approved\t%d\n", s.Approved)
	fmt.Fprintf(tw, "rejected\t%d\n", s.Rejected)
	fmt.Fprintf(tw, "pending\t%d\n", s.Pending)
	tw.Flush()
}
