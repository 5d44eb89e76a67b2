package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"wedding-invitation/internal/config"
	"wedding-invitation/internal/eventdetails"
	"wedding-invitation/internal/handler"
	"wedding-invitation/internal/invitation"
	"wedding-invitation/internal/models"
	"wedding-invitation/internal/storage"
	"wedding-invitation/internal/storage/sqlite"
	"wedding-invitation/internal/whatsapp"
)

func main() {
	fmt.Println("💌 Wedding Invitation Server")
	fmt.Println("============================")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := eventdetails.Load(cfg.EventDetailsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading event details")
	}

	guestStorage, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing storage")
	}
	defer guestStorage.Close()

	var notifier handler.Notifier
	var whatsappService *whatsapp.Service
	if cfg.WhatsAppEnabled {
		whatsappService, err = whatsapp.NewService(ctx, &whatsapp.Config{DataDir: cfg.WhatsAppDataDir}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Error initializing WhatsApp service")
		}
		notifier = whatsappService
	}

	rsvpHandler := handler.NewRSVPHandler(notifier, guestStorage, &handler.Config{
		BaseURL: cfg.BaseURL,
		Details: doc.Details,
	}, log)

	if whatsappService != nil {
		whatsappService.SetMessageHandler(rsvpHandler.HandleMessage)

		fmt.Println("Connecting to WhatsApp...")
		if err := whatsappService.Connect(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error connecting to WhatsApp")
		}
		defer whatsappService.Disconnect()
		fmt.Println("✅ Connected to WhatsApp!")
	}

	sessions := invitation.NewSessions(cfg.SessionTTL, invitation.GlitterEffects(log), log.With().Str("component", "Sessions").Logger())
	go sessions.Run(ctx, time.Minute)

	invitationHandler, err := handler.NewInvitationHandler(rsvpHandler, guestStorage, doc, sessions, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing HTTP handler")
	}

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      invitationHandler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
			stop()
		}
	}()

	go startCLI(ctx, stop, rsvpHandler, guestStorage)

	<-ctx.Done()

	fmt.Println("\n\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	fmt.Println("Goodbye! 👋")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.LogPretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	switch cfg.StorageDriver {
	case config.DriverSQLite:
		return sqlite.Open(ctx, fmt.Sprintf("file:%s?_foreign_keys=on", filepath.Join(cfg.DataDir, "guests.db")))
	default:
		return storage.NewFileStorage(filepath.Join(cfg.DataDir, "guests.json"))
	}
}

func startCLI(ctx context.Context, stop context.CancelFunc, rsvpHandler *handler.RSVPHandler, store storage.Storage) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Println("\nCommands:")
		fmt.Println("  1. Invite guest")
		fmt.Println("  2. View all guests")
		fmt.Println("  3. View guests by status")
		fmt.Println("  4. Exit")
		fmt.Print("\nEnter command (1-4): ")

		if !scanner.Scan() {
			return
		}

		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			inviteGuest(ctx, scanner, rsvpHandler)
		case "2":
			guests, err := store.GetAllGuests(ctx)
			printGuests("All Guests", guests, err)
		case "3":
			viewGuestsByStatus(ctx, scanner, store)
		case "4":
			fmt.Println("Exiting...")
			stop()
			return
		default:
			fmt.Println("Invalid command. Please try again.")
		}
	}
}

func inviteGuest(ctx context.Context, scanner *bufio.Scanner, rsvpHandler *handler.RSVPHandler) {
	fmt.Print("Enter guest name: ")
	if !scanner.Scan() {
		return
	}
	name := strings.TrimSpace(scanner.Text())

	fmt.Print("Enter phone number (optional, with country code): ")
	if !scanner.Scan() {
		return
	}
	phoneNumber := strings.TrimSpace(scanner.Text())

	fmt.Print("Notes (optional): ")
	if !scanner.Scan() {
		return
	}
	notes := strings.TrimSpace(scanner.Text())

	guest, err := rsvpHandler.SendInvitation(ctx, phoneNumber, name, notes)
	if guest.Token != "" {
		fmt.Printf("\nInvitation link for %s: %s\n", guest.Name, rsvpHandler.InvitationLink(guest.Token))
	}
	if err != nil {
		fmt.Printf("❌ Error sending invitation: %v\n", err)
		return
	}
	fmt.Println("✅ Guest invited!")
}

func viewGuestsByStatus(ctx context.Context, scanner *bufio.Scanner, store storage.Storage) {
	fmt.Println("\nSelect status:")
	fmt.Println("  1. Pending")
	fmt.Println("  2. Viewed (responded, not attending)")
	fmt.Println("  3. Accepted")
	fmt.Print("Enter choice (1-3): ")

	if !scanner.Scan() {
		return
	}

	var status models.RSVPStatus
	switch strings.TrimSpace(scanner.Text()) {
	case "1":
		status = models.RSVPPending
	case "2":
		status = models.RSVPViewed
	case "3":
		status = models.RSVPAccepted
	default:
		fmt.Println("Invalid choice.")
		return
	}

	guests, err := store.GetGuestsByStatus(ctx, status)
	printGuests(fmt.Sprintf("Guests with status '%s'", status), guests, err)
}

func printGuests(title string, guests []models.Guest, err error) {
	if err != nil {
		fmt.Printf("❌ Error loading guests: %v\n", err)
		return
	}
	if len(guests) == 0 {
		fmt.Println("\nNo guests found.")
		return
	}

	fmt.Printf("\n📋 %s (%d total):\n", title, len(guests))
	fmt.Println(strings.Repeat("-", 60))
	for _, guest := range guests {
		fmt.Printf("Name: %s\n", guest.Name)
		if guest.PhoneNumber != "" {
			fmt.Printf("Phone: %s\n", guest.PhoneNumber)
		}
		fmt.Printf("Token: %s\n", guest.Token)
		fmt.Printf("Status: %s\n", guest.Status())
		if !guest.RSVPDate.IsZero() {
			fmt.Printf("RSVP Date: %s\n", guest.RSVPDate.Format("2006-01-02 15:04:05"))
		}
		for k, v := range guest.CustomFields {
			fmt.Printf("  %s: %s\n", k, v)
		}
		if guest.Notes != "" {
			fmt.Printf("Notes: %s\n", guest.Notes)
		}
		fmt.Println(strings.Repeat("-", 60))
	}
}
