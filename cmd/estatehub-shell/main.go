package main

import (
	"EstateHub/app"
	"EstateHub/config"
	"EstateHub/discovery"
	"EstateHub/guard"
	"EstateHub/session"
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type terminal struct {
	in     *bufio.Scanner
	closed bool
}

func (t *terminal) ask(prompt string) string {
	fmt.Print(prompt)
	if !t.in.Scan() {
		t.closed = true
		return ""
	}
	return strings.TrimSpace(t.in.Text())
}

func (t *terminal) AskLocationConsent(ctx context.Context, l discovery.Listing) bool {
	answer := strings.ToLower(t.ask("Use your location to show " + l.Title + " on a map? [y/N] "))
	return answer == "y" || answer == "yes"
}

func (t *terminal) Voices() []discovery.Voice {
	return []discovery.Voice{{Name: "terminal", Lang: "en-IN", Default: true}}
}

func (t *terminal) Speak(ctx context.Context, text string, voice discovery.Voice) error {
	fmt.Println("» " + text)
	return nil
}

func (t *terminal) Notify(n discovery.Notice) {
	prefix := "info"
	switch n.Level {
	case discovery.LevelSuccess:
		prefix = "ok"
	case discovery.LevelError:
		prefix = "error"
	}
	fmt.Printf("[%s] %s\n", prefix, n.Message)
}

func main() {
	settings := config.LoadClient()
	logger := config.NewLogger(settings.LogLevel, settings.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var storage session.Storage = session.NewMemoryStorage()
	if settings.SessionRedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: settings.SessionRedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("session redis unavailable, session will not persist", zap.Error(err))
		} else {
			storage = session.NewRedisStorage(rdb, "estatehub:device:"+settings.DeviceID, settings.SessionTTL)
		}
	}

	term := &terminal{in: bufio.NewScanner(os.Stdin)}
	a := app.New(settings, storage, app.Platform{
		Prompter: term,
		Narrator: term,
		Notifier: term,
	}, logger)

	_ = a.Start(ctx, func(redirect string) {
		fmt.Println("Signed out after inactivity, go to " + redirect)
	})

	var listings []discovery.Listing
	for ctx.Err() == nil {
		line := term.ask("estatehub> ")
		if line == "" {
			if term.closed {
				break
			}
			continue
		}
		a.Session.RecordActivity(ctx)
		args := strings.Fields(line)
		switch args[0] {
		case "login":
			if len(args) != 3 {
				fmt.Println("usage: login <email> <password>")
				continue
			}
			if s, err := a.Session.SignIn(ctx, args[1], args[2]); err != nil {
				fmt.Println(err)
			} else {
				fmt.Printf("Welcome %s (%s)\n", s.Name, s.Role)
				a.Wishlist.Load(ctx)
			}
		case "logout":
			_ = a.Session.SignOut(ctx)
		case "go":
			if len(args) != 2 {
				fmt.Println("usage: go <path>")
				continue
			}
			d := a.Navigate(ctx, args[1])
			if d.Action == guard.Redirect {
				fmt.Println("redirect to " + d.Location)
			} else {
				fmt.Println(d.Action)
			}
		case "list":
			if len(args) > 1 {
				a.Browser.SetCategory(discovery.Category(args[1]))
			}
			a.Browser.SetSearch(strings.Join(args[min(len(args), 2):], " "))
			listings = a.Browser.Apply(a.Catalog.FetchListings(ctx, a.Browser.Filter().Category, nil))
			for _, l := range listings {
				saved := " "
				if a.Wishlist.Contains(l) {
					saved = "♥"
				}
				fmt.Printf("%s %-10s %-30s %s\n", saved, l.Key(), l.Title, discovery.PriceInWords(l.PriceValue))
			}
		case "wish":
			if l, ok := find(listings, args); ok {
				a.Wishlist.Toggle(ctx, l)
			}
		case "visit":
			if len(args) != 4 {
				fmt.Println("usage: visit <key> <YYYY-MM-DD> <HH:MM>")
				continue
			}
			if l, ok := find(listings, args[:2]); ok {
				visits, err := a.Visits.ScheduleVisit(ctx, l, args[2], args[3])
				if err == nil {
					for _, v := range visits {
						fmt.Printf("%s %s %s %s\n", v.Date, v.Time, v.PropertyName, v.Status)
					}
				}
			}
		case "voice":
			a.Voice.Search(ctx, strings.Join(args[1:], " "), listings)
		case "quit", "exit":
			stop()
		default:
			fmt.Println("commands: login, logout, go, list, wish, visit, voice, quit")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Close(shutdownCtx); err != nil {
		logger.Warn("pending requests cut short", zap.Error(err))
	}
}

func find(listings []discovery.Listing, args []string) (discovery.Listing, bool) {
	if len(args) < 2 {
		fmt.Println("which listing? run list first")
		return discovery.Listing{}, false
	}
	for _, l := range listings {
		if l.Key() == args[1] {
			return l, true
		}
	}
	fmt.Println("no listing " + args[1] + " in the last list")
	return discovery.Listing{}, false
}
