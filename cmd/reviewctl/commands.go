package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"listing-review/internal/authz"
	"listing-review/internal/domain"
	"listing-review/internal/lifecycle"
	"listing-review/internal/session"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func oneArg(args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", errUsage
	}
	return args[0], nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "")
	password := fs.String("password", "", "")
	if err := fs.Parse(args); err != nil || *email == "" || *password == "" {
		return errUsage
	}

	sess, err := a.sessions.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	printIdentity(a.out, sess.Identity(), authz.Landing(sess.Identity().Role))
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	email := fs.String("email", "", "")
	password := fs.String("password", "", "")
	roleName := fs.String("role", domain.RoleTeamMember.String(), "")
	if err := fs.Parse(args); err != nil || *email == "" || *password == "" {
		return errUsage
	}
	role, err := domain.ParseRole(*roleName)
	if err != nil {
		return domain.ValidationErrors{{Field: "role", Message: "must be admin or team-member"}}
	}

	sess, err := a.sessions.Register(ctx, *email, *password, role)
	if err != nil {
		return err
	}
	printIdentity(a.out, sess.Identity(), authz.Landing(sess.Identity().Role))
	return nil
}

func (a *app) whoami() error {
	sess, err := a.sessions.Resume()
	if err != nil {
		return err
	}
	printIdentity(a.out, sess.Identity(), authz.Landing(sess.Identity().Role))
	return nil
}

func (a *app) products(ctx context.Context) error {
	sess, err := a.sessions.Resume()
	if err != nil {
		return err
	}
	products, err := a.controller.ListProducts(ctx, sess)
	if err != nil {
		return err
	}
	printProducts(a.out, products)
	return nil
}

func (a *app) product(ctx context.Context, args []string) error {
	id, err := oneArg(args)
	if err != nil {
		return err
	}
	sess, err := a.sessions.Resume()
	if err != nil {
		return err
	}
	draft, err := a.controller.OpenDraft(ctx, sess, id)
	if err != nil {
		return err
	}
	printDraft(a.out, draft)
	draft.Discard()
	return nil
}

// edit stages flag values on a draft of the product and either submits it
// for review or, for admins, saves it directly
func (a *app) edit(ctx context.Context, args []string, direct bool) error {
	if len(args) == 0 {
		return errUsage
	}
	productID := args[0]

	fs := newFlagSet("edit")
	values := map[lifecycle.Field]*string{
		lifecycle.FieldProductName:        fs.String("name", "", ""),
		lifecycle.FieldPrice:              fs.String("price", "", ""),
		lifecycle.FieldProductDescription: fs.String("description", "", ""),
		lifecycle.FieldDepartment:         fs.String("department", "", ""),
		lifecycle.FieldImage:              fs.String("image", "", ""),
	}
	flagFields := map[string]lifecycle.Field{
		"name":        lifecycle.FieldProductName,
		"price":       lifecycle.FieldPrice,
		"description": lifecycle.FieldProductDescription,
		"department":  lifecycle.FieldDepartment,
		"image":       lifecycle.FieldImage,
	}
	imageFile := fs.String("image-file", "", "")
	if err := fs.Parse(args[1:]); err != nil {
		return errUsage
	}

	var (
		edited []lifecycle.Field
		errs   domain.ValidationErrors
	)
	fs.Visit(func(f *flag.Flag) {
		field, ok := flagFields[f.Name]
		if !ok {
			return
		}
		edited = append(edited, field)
		var fieldErrs domain.ValidationErrors
		if errors.As(lifecycle.CheckField(field, *values[field]), &fieldErrs) {
			errs = append(errs, fieldErrs...)
		}
	})
	if len(errs) > 0 {
		return errs
	}

	sess, err := a.sessions.Resume()
	if err != nil {
		return err
	}
	draft, err := a.controller.OpenDraft(ctx, sess, productID)
	if err != nil {
		return err
	}
	defer draft.Discard()

	for _, field := range edited {
		if err := draft.Set(field, *values[field]); err != nil {
			return err
		}
	}
	if _, err := draft.Snapshot(); err != nil {
		return err
	}

	if *imageFile != "" {
		url, err := a.upload(ctx, sess, *imageFile)
		if err != nil {
			return err
		}
		if err := draft.Set(lifecycle.FieldImage, url); err != nil {
			return err
		}
	}

	if direct {
		product, err := a.controller.SaveProduct(ctx, sess, productID, draft)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "saved product %s\n", product.ID)
		return nil
	}

	review, err := a.controller.SubmitForReview(ctx, sess, productID, draft)
	if err != nil {
		return err
	}
	printReview(a.out, review)
	fmt.Fprintf(a.out, "next: %s\n", lifecycle.AfterSubmit(sess))
	return nil
}

func (a *app) upload(ctx context.Context, sess *session.Session, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	return a.controller.UploadImage(ctx, sess, filepath.Base(path), f)
}

func (a *app) pending(ctx context.Context) error {
	sess, err := a.sessions.Resume()
	if err != nil {
		return err
	}
	reviews, err := a.controller.ListPending(ctx, sess)
	if err != nil {
		return err
	}
	printReviews(a.out, reviews)
	return nil
}

func (a *app) review(ctx context.Context, args []string) error {
	id, err := oneArg(args)
	if err != nil {
		return err
	}
	sess, err := a.sessions.Resume()
	if err != nil {
		return err
	}
	review, err := a.controller.GetReviewDetail(ctx, sess, id)
	if err != nil {
		return err
	}
	printReview(a.out, review)
	return nil
}

func (a *app) decide(ctx context.Context, args []string, decision domain.Decision) error {
	id, err := oneArg(args)
	if err != nil {
		return err
	}
	sess, err := a.sessions.Resume()
	if err != nil {
		return err
	}

	review, err := a.controller.Decide(ctx, sess, id, decision)
	if review != nil {
		printReview(a.out, review)
	}
	if err != nil {
		return err
	}

	// the decided review must drop out of a freshly fetched queue
	fmt.Fprintf(a.out, "\n%s:\n", lifecycle.AfterDecide())
	return a.pending(ctx)
}

func (a *app) personArg(args []string, self string) (string, error) {
	switch len(args) {
	case 0:
		return self, nil
	case 1:
		return args[0], nil
	}
	return "", errUsage
}

func (a *app) history(ctx context.Context, args []string) error {
	sess, err := a.sessions.Resume()
	if err != nil {
		return err
	}
	personID, err := a.personArg(args, sess.Identity().ID)
	if err != nil {
		return err
	}
	partition, err := a.controller.ListByPerson(ctx, sess, personID)
	if err != nil {
		return err
	}
	printPartition(a.out, partition)
	return nil
}

func (a *app) stats(ctx context.Context, args []string) error {
	sess, err := a.sessions.Resume()
	if err != nil {
		return err
	}
	personID, err := a.personArg(args, sess.Identity().ID)
	if err != nil {
		return err
	}
	stats, err := a.controller.UserStats(ctx, sess, personID)
	if err != nil {
		return err
	}
	printStats(a.out, stats)
	return nil
}

func (a *app) profile(ctx context.Context) error {
	sess, err := a.sessions.Resume()
	if err != nil {
		return err
	}
	profile, err := a.controller.Profile(ctx, sess)
	if err != nil {
		return err
	}
	printIdentity(a.out, profile.Identity, authz.Landing(profile.Identity.Role))
	fmt.Fprintln(a.out)
	printStats(a.out, profile.Stats)
	fmt.Fprintln(a.out)
	printPartition(a.out, profile.History)
	return nil
}
