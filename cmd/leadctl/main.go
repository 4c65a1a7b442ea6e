// cmd/leadctl/main.go
//
// Terminal client for the lead endpoints.
//
// Context
//
//	leadctl drives the same form models the landing page uses, so it is a
//	quick way to smoke-test a deployment or enter a lead taken by phone.
//	Values come from flags; anything missing is asked interactively with
//	survey prompts.
//
// Usage
//
//	leadctl -url https://bac.md                      # student, prompts
//	leadctl -url https://bac.md -teacher             # teacher application
//	leadctl -url https://bac.md -subscribe -email x@y.md
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/easybac/landing/internal/lead"
	"github.com/easybac/landing/internal/leadform"
	"github.com/easybac/landing/internal/validate"
)

type flags struct {
	url        string
	subscribe  bool
	teacher    bool
	name       string
	phone      string
	course     string
	experience string
	email      string
}

func main() {
	var f flags
	flag.StringVar(&f.url, "url", "http://localhost:8080", "base URL of the lead service")
	flag.BoolVar(&f.subscribe, "subscribe", false, "subscribe an email to the newsletter")
	flag.BoolVar(&f.teacher, "teacher", false, "submit a teacher application")
	flag.StringVar(&f.name, "name", "", "full name")
	flag.StringVar(&f.phone, "phone", "", "Moldovan mobile number")
	flag.StringVar(&f.course, "course", "", "course label")
	flag.StringVar(&f.experience, "experience", "", "teaching experience")
	flag.StringVar(&f.email, "email", "", "newsletter email")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	poster := leadform.NewHTTPPoster(f.url)

	var err error
	if f.subscribe {
		err = subscribe(ctx, poster, f)
	} else {
		err = register(ctx, poster, f)
	}
	switch {
	case err == nil:
		fmt.Println("Mulțumim!  Datele au fost trimise.")
	case errors.Is(err, terminal.InterruptErr), errors.Is(err, context.Canceled):
		os.Exit(130)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func register(ctx context.Context, p leadform.Poster, f flags) error {
	courses := fetchCourses(ctx, f.url)

	opts := []leadform.Option{leadform.WithCatalog(courses.Contains), leadform.WithResetAfter(time.Millisecond)}
	if f.teacher {
		opts = append(opts, leadform.AsTeacher())
	}
	form := leadform.NewSubmissionForm(p, opts...)
	defer form.Close()

	var err error
	if f.name, err = ask(f.name, &survey.Input{Message: "Nume și prenume:"}, survey.Required); err != nil {
		return err
	}
	if f.phone, err = ask(f.phone, &survey.Input{Message: "Telefon:", Help: "+373XXXXXXXX sau 0XXXXXXXX"},
		phoneValidator); err != nil {
		return err
	}
	if f.course == "" {
		if err := survey.AskOne(&survey.Select{Message: "Curs:", Options: courses.Labels()}, &f.course); err != nil {
			return err
		}
	}
	if f.teacher {
		if f.experience, err = ask(f.experience, &survey.Multiline{Message: "Experiență:"}, survey.Required); err != nil {
			return err
		}
	}

	form.SetPreselectedCourse(f.course)
	form.SetName(f.name)
	form.SetPhone(f.phone)
	form.SetExperience(f.experience)

	if err := form.Submit(ctx); err != nil {
		return describe(err, form.Snapshot().Message)
	}
	return nil
}

func subscribe(ctx context.Context, p leadform.Poster, f flags) error {
	form := leadform.NewNewsletterForm(p, leadform.WithResetAfter(time.Millisecond))
	defer form.Close()

	email, err := ask(f.email, &survey.Input{Message: "Email:"}, survey.Required)
	if err != nil {
		return err
	}
	form.SetEmail(email)
	if err := form.Submit(ctx); err != nil {
		_, _, msg := form.Snapshot()
		return describe(err, msg)
	}
	return nil
}

// ask returns cur when set, otherwise prompts.
func ask(cur string, prompt survey.Prompt, v survey.Validator) (string, error) {
	if cur != "" {
		return cur, nil
	}
	var out string
	err := survey.AskOne(prompt, &out, survey.WithValidator(v))
	return strings.TrimSpace(out), err
}

func phoneValidator(v any) error {
	s, _ := v.(string)
	if !validate.Phone(strings.TrimSpace(s)) {
		return errors.New(leadform.MsgPhone)
	}
	return nil
}

// describe pairs the visitor-facing message with the underlying cause.
func describe(err error, msg string) error {
	if msg == "" {
		return err
	}
	return fmt.Errorf("%s (%w)", msg, err)
}

// fetchCourses asks the server for its catalog and falls back to the
// built-in list.
func fetchCourses(ctx context.Context, base string) lead.Catalog {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+"/api/courses", nil)
	if err != nil {
		return lead.DefaultCourses
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return lead.DefaultCourses
	}
	defer res.Body.Close()

	var body struct {
		Courses []string `json:"courses"`
	}
	if res.StatusCode != http.StatusOK || json.NewDecoder(res.Body).Decode(&body) != nil {
		return lead.DefaultCourses
	}
	return lead.NewCatalog(body.Courses)
}
