// Command edulist is a terminal client for the EduList API: browse the
// public institute directory, manage an institute's listing, and run the
// platform-admin approval queue.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"edulist_client/internal/admin"
	"edulist_client/internal/auth"
	"edulist_client/internal/course"
	"edulist_client/internal/enquiry"
	"edulist_client/internal/facility"
	"edulist_client/internal/guard"
	"edulist_client/internal/institute"
	"edulist_client/internal/normalize"
	"edulist_client/internal/review"
	"edulist_client/internal/session"
	"edulist_client/internal/transport"
	"edulist_client/internal/upload"
	"edulist_client/platform/apperr"
	"edulist_client/platform/config"
	"edulist_client/platform/logger"
	"edulist_client/platform/validator"
)

type app struct {
	store      *session.Store
	institutes *institute.Service
	courses    *course.Service
	reviews    *review.Service
	enquiries  *enquiry.Service
	facilities *facility.Service
	admin      *admin.Service
	uploads    *upload.Service
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env)

	tokens, err := session.OpenBolt(cfg.TokenStorePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open token store:", err)
		os.Exit(1)
	}
	defer tokens.Close()

	store := session.NewStore(tokens, log)
	client := transport.New(cfg.APIBaseURL, store, log,
		transport.WithTimeout(cfg.RequestTimeout),
		transport.WithRateLimit(cfg.RequestsPerSec, cfg.RequestBurst),
	)
	validate := validator.New()
	norm := normalize.NewNormalizer(log)

	store.AttachAPI(auth.New(client, validate, log))

	a := &app{
		store:      store,
		institutes: institute.New(client, norm, validate, log),
		courses:    course.New(client, norm, validate, log),
		reviews:    review.New(client, norm, validate, log),
		enquiries:  enquiry.New(client, norm, validate, log),
		facilities: facility.New(client, norm, validate, log),
		admin:      admin.New(client, norm, log),
		uploads:    upload.New(client, log).WithTimeouts(cfg.UploadTimeout, cfg.MultiUploadTimeout),
	}

	ctx := context.Background()

	command := os.Args[1]
	args := os.Args[2:]

	// Every command except login/register/logout starts from the persisted
	// session, loaded once.
	switch command {
	case "login", "register", "logout", "help", "-h", "--help":
	default:
		store.LoadOnce(ctx)
	}

	if err := a.run(ctx, command, args); err != nil {
		fmt.Fprintln(os.Stderr, apperr.UserMessage(err))
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "help", "-h", "--help":
		usage()
		return nil
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "logout":
		a.store.Logout()
		fmt.Println("Logged out.")
		return nil
	case "whoami":
		return a.whoami()
	case "institutes":
		return a.listInstitutes(ctx, args)
	case "institute":
		return a.showInstitute(ctx, args)
	case "courses":
		return a.listCourses(ctx, args)
	case "reviews":
		return a.listReviews(ctx, args)
	case "enquire":
		return a.enquire(ctx, args)
	case "enquiries":
		return a.listEnquiries(ctx, args)
	case "facilities":
		return a.listFacilities(ctx)
	case "pending":
		return a.listPending(ctx)
	case "approve":
		return a.decideInstitute(ctx, args, true)
	case "reject":
		return a.decideInstitute(ctx, args, false)
	case "users":
		return a.listUsers(ctx)
	case "stats":
		return a.stats(ctx)
	case "upload":
		return a.upload(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// requireRole maps a route-guard decision onto a CLI error.
func (a *app) requireRole(roles ...session.Role) error {
	decision := guard.CanAccess(a.store.Snapshot(), roles...)
	if decision.Allowed {
		return nil
	}
	if decision.Redirect == guard.LoginRoute {
		return apperr.Unauthorized("You are not logged in. Run `edulist login` first.")
	}
	return apperr.Forbidden("Your account role does not allow this command.")
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	snap, err := a.store.Login(ctx, session.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s)\n", snap.User.Name, snap.User.Role)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	role := fs.String("role", "user", "account role: user or institute")
	fs.Parse(args)

	snap, err := a.store.Register(ctx, session.Registration{
		Name:     *name,
		Email:    *email,
		Password: *password,
		Role:     session.Role(*role),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Registered and logged in as %s (%s)\n", snap.User.Name, snap.User.Role)
	return nil
}

func (a *app) whoami() error {
	snap := a.store.Snapshot()
	if !snap.IsAuthenticated() {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("%s <%s> role=%s\n", snap.User.Name, snap.User.Email, snap.User.Role)
	return nil
}

func (a *app) listInstitutes(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("institutes", flag.ExitOnError)
	search := fs.String("search", "", "full-text search")
	city := fs.String("city", "", "filter by city")
	kind := fs.String("type", "", "filter by institute type")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "page size")
	fs.Parse(args)

	items := a.institutes.List(ctx, institute.ListParams{
		Search: *search, City: *city, Type: *kind, Page: *page, Limit: *limit,
	})
	if len(items) == 0 {
		fmt.Println("No institutes found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tCITY\tRATING")
	for _, inst := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f (%d)\n", inst.ID, inst.Name, inst.Type, inst.City, inst.Rating, inst.ReviewCount)
	}
	return w.Flush()
}

func (a *app) showInstitute(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: edulist institute <id>")
	}
	inst, err := a.institutes.Get(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n%s\n%s, %s, %s\n", inst.Name, inst.Type, inst.Description, inst.Address, inst.City, inst.State)
	if len(inst.Facilities) > 0 {
		fmt.Println("Facilities:", strings.Join(inst.Facilities, ", "))
	}
	return nil
}

func (a *app) listCourses(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("courses", flag.ExitOnError)
	instituteID := fs.String("institute", "", "institute ID; omit with -my")
	my := fs.Bool("my", false, "list the courses of your own institute")
	fs.Parse(args)

	var items []course.Course
	if *my {
		if err := a.requireRole(session.RoleInstitute); err != nil {
			return err
		}
		items = a.courses.ListMy(ctx)
	} else {
		if *instituteID == "" {
			return fmt.Errorf("usage: edulist courses -institute <id> | edulist courses -my")
		}
		items = a.courses.ListByInstitute(ctx, *instituteID)
	}

	if len(items) == 0 {
		fmt.Println("No courses found.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDURATION\tMODE\tFEE")
	for _, c := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0f\n", c.ID, c.Name, c.Duration, c.Mode, c.Fee)
	}
	return w.Flush()
}

func (a *app) listReviews(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reviews", flag.ExitOnError)
	instituteID := fs.String("institute", "", "institute ID")
	fs.Parse(args)
	if *instituteID == "" {
		return fmt.Errorf("usage: edulist reviews -institute <id>")
	}

	items := a.reviews.ListByInstitute(ctx, *instituteID)
	if len(items) == 0 {
		fmt.Println("No reviews yet.")
		return nil
	}
	for _, r := range items {
		fmt.Printf("[%d/5] %s: %s\n", r.Rating, r.UserName, r.Comment)
	}
	return nil
}

func (a *app) enquire(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("enquire", flag.ExitOnError)
	instituteID := fs.String("institute", "", "institute ID")
	name := fs.String("name", "", "your name")
	email := fs.String("email", "", "contact email")
	phoneNum := fs.String("phone", "", "contact phone")
	message := fs.String("message", "", "enquiry text")
	fs.Parse(args)

	e, err := a.enquiries.Create(ctx, enquiry.CreateRequest{
		InstituteID: *instituteID,
		Name:        *name,
		Email:       *email,
		Phone:       *phoneNum,
		Message:     *message,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Enquiry submitted (id %s, status %s).\n", e.ID, e.Status)
	return nil
}

func (a *app) listEnquiries(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("enquiries", flag.ExitOnError)
	received := fs.Bool("received", false, "show enquiries received by your institute")
	fs.Parse(args)

	var items []enquiry.Enquiry
	if *received {
		if err := a.requireRole(session.RoleInstitute); err != nil {
			return err
		}
		items = a.enquiries.ListForInstitute(ctx)
	} else {
		if err := a.requireRole(); err != nil {
			return err
		}
		items = a.enquiries.ListMy(ctx)
	}

	if len(items) == 0 {
		fmt.Println("No enquiries.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPHONE\tSTATUS\tMESSAGE")
	for _, e := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Phone, e.Status, e.Message)
	}
	return w.Flush()
}

func (a *app) listFacilities(ctx context.Context) error {
	items := a.facilities.List(ctx)
	if len(items) == 0 {
		fmt.Println("No facilities configured.")
		return nil
	}
	for _, f := range items {
		fmt.Println("-", f.Name)
	}
	return nil
}

func (a *app) listPending(ctx context.Context) error {
	if err := a.requireRole(session.RoleAdmin); err != nil {
		return err
	}
	items := a.admin.ListPendingInstitutes(ctx)
	if len(items) == 0 {
		fmt.Println("No institutes awaiting approval.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tCITY\tSUBMITTED")
	for _, inst := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", inst.ID, inst.Name, inst.Type, inst.City, inst.CreatedAt)
	}
	return w.Flush()
}

func (a *app) decideInstitute(ctx context.Context, args []string, approve bool) error {
	if err := a.requireRole(session.RoleAdmin); err != nil {
		return err
	}
	if len(args) < 1 {
		return fmt.Errorf("usage: edulist approve|reject <institute-id>")
	}
	if approve {
		if err := a.admin.ApproveInstitute(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("Institute approved.")
		return nil
	}
	if err := a.admin.RejectInstitute(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("Institute rejected.")
	return nil
}

func (a *app) listUsers(ctx context.Context) error {
	if err := a.requireRole(session.RoleAdmin); err != nil {
		return err
	}
	items := a.admin.ListUsers(ctx)
	if len(items) == 0 {
		fmt.Println("No users.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE")
	for _, u := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role)
	}
	return w.Flush()
}

func (a *app) stats(ctx context.Context) error {
	if err := a.requireRole(session.RoleAdmin); err != nil {
		return err
	}
	stats, err := a.admin.Dashboard(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Institutes: %d (%d pending)\nUsers: %d\nEnquiries: %d\nReviews: %d\n",
		stats.TotalInstitutes, stats.PendingInstitutes, stats.TotalUsers, stats.TotalEnquiries, stats.TotalReviews)
	return nil
}

func (a *app) upload(ctx context.Context, args []string) error {
	if err := a.requireRole(session.RoleInstitute, session.RoleAdmin); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: edulist upload <file> [file...]")
	}

	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		res, err := a.uploads.SingleFile(ctx, filepath.Base(args[0]), f)
		if err != nil {
			return err
		}
		fmt.Println("Uploaded:", res.URL)
		return nil
	}

	files := make([]upload.NamedFile, 0, len(args))
	handles := make([]*os.File, 0, len(args))
	defer func() {
		for _, h := range handles {
			h.Close()
		}
	}()
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		handles = append(handles, f)
		files = append(files, upload.NamedFile{Name: filepath.Base(path), Content: f})
	}

	results, err := a.uploads.MultiFile(ctx, files)
	if err != nil {
		return err
	}
	for _, res := range results {
		fmt.Println("Uploaded:", res.URL)
	}
	return nil
}

func usage() {
	fmt.Fprint(os.Stderr, `edulist - EduList directory client

Usage:
  edulist login -email <email> -password <password>
  edulist register -name <name> -email <email> -password <password> [-role user|institute]
  edulist logout | whoami
  edulist institutes [-search q] [-city c] [-type t] [-page n] [-limit n]
  edulist institute <id>
  edulist courses -institute <id> | edulist courses -my
  edulist reviews -institute <id>
  edulist enquire -institute <id> -name n -email e -phone p -message m
  edulist enquiries [-received]
  edulist facilities
  edulist pending | approve <id> | reject <id> | users | stats   (admin)
  edulist upload <file> [file...]                                (institute)
`)
}
