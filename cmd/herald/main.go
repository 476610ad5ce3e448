package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/guild-genesis/herald/adapters/chain"
	"github.com/guild-genesis/herald/adapters/events"
	"github.com/guild-genesis/herald/adapters/guildapi"
	"github.com/guild-genesis/herald/adapters/store"
	"github.com/guild-genesis/herald/adapters/wallet"
	"github.com/guild-genesis/herald/core"
	"github.com/guild-genesis/herald/internal/config"
	"github.com/guild-genesis/herald/ports"
	"github.com/guild-genesis/herald/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const usage = `usage: herald <command> [arguments]

commands:
  login                           sign in with the configured wallet
  logout                          drop the stored session
  whoami                          show the active session
  profiles                        list community profiles
  profile-create -name N [-description D] [-github G]
  profile-update -address A -name N [-description D] [-github G]
  profile-delete -address A
  badges                          list registered badges
  badge-create -name N -description D
  attest -recipient A -badge B -justification J
  attestations                    list attestations
  balance [-address A]            show activity-token balance
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "herald: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "herald: %v\n", err)
		os.Exit(1)
	}
	defer app.close()

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "herald: %s\n", core.UserMessage(err))
		log.Debug().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// app holds the wired components behind the CLI commands.
type app struct {
	cfg *config.ClientConfig
	log zerolog.Logger

	signer   ports.Signer
	auth     *service.AuthManager
	profiles *service.Profiles
	mutate   *service.Mutations
	dir      *service.Directory

	chainClient *chain.Client
	redisClient *redis.Client
}

func buildApp(ctx context.Context, cfg *config.ClientConfig, log zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	var signer ports.Signer
	if cfg.PrivateKey != "" {
		keySigner, err := wallet.NewKeySigner(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		signer = keySigner
	}
	a.signer = signer

	sessionStore := store.NewMemoryStore()
	var publisher ports.EventPublisher
	var listener ports.InvalidationListener
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		a.redisClient = redis.NewClient(opts)
		sessionStore = store.NewRedisStore(a.redisClient)

		wmLogger := watermill.NewStdLogger(false, false)
		pub, err := redisstream.NewPublisher(redisstream.PublisherConfig{Client: a.redisClient}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create publisher: %w", err)
		}
		publisher = events.NewWatermillPublisher(pub)

		sub, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{Client: a.redisClient}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create subscriber: %w", err)
		}
		listener = events.NewWatermillListener(sub, log)
	}

	authClient := guildapi.NewClient(cfg.APIBaseURL, nil, log)
	a.auth = service.NewAuthManager(signer, authClient, sessionStore, publisher, cfg.SiweDomain, log)

	profileClient := guildapi.NewClient(cfg.APIBaseURL, a.auth, log)
	a.profiles = service.NewProfiles(profileClient, publisher, log)

	chainClient, err := chain.Dial(ctx, cfg.RPCURL, signer, chain.Contracts{
		BadgeRegistry:       cfg.BadgeRegistryAddress,
		EAS:                 cfg.EASAddress,
		AttestationResolver: cfg.ResolverAddress,
		ActivityToken:       cfg.ActivityTokenAddress,
		SchemaID:            cfg.SchemaID,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rpc node: %w", err)
	}
	a.chainClient = chainClient

	depths := service.MutationDepths{
		Badge:       cfg.ConfirmationsBadge,
		Attestation: cfg.ConfirmationsAttestation,
	}
	a.mutate = service.NewMutations(chainClient, chainClient, publisher, depths, log)

	a.dir = service.NewDirectory(chainClient, listener, log)
	a.dir.Start(ctx)

	return a, nil
}

func (a *app) close() {
	if a.chainClient != nil {
		a.chainClient.Close()
	}
	if a.redisClient != nil {
		a.redisClient.Close()
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		session, err := a.auth.Login(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s (expires %s)\n", session.Address, session.ExpiresAt.Format("2006-01-02 15:04"))
		return nil

	case "logout":
		if err := a.auth.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("signed out")
		return nil

	case "whoami":
		session, err := a.auth.Session(ctx)
		if err != nil {
			return err
		}
		if session == nil {
			fmt.Println("not signed in")
			return nil
		}
		fmt.Printf("%s (session expires %s)\n", session.Address, session.ExpiresAt.Format("2006-01-02 15:04"))
		return nil

	case "profiles":
		profiles, err := a.profiles.List(ctx)
		if err != nil {
			return err
		}
		for _, p := range profiles {
			fmt.Printf("%s\t%s\t%s\n", p.Address, p.Name, p.Description)
		}
		return nil

	case "profile-create":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		name := fs.String("name", "", "display name")
		description := fs.String("description", "", "profile description")
		github := fs.String("github", "", "github login")
		fs.Parse(args)
		return a.profiles.Create(ctx, core.ProfileInput{
			Name: *name, Description: *description, GithubLogin: *github,
		})

	case "profile-update":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		address := fs.String("address", "", "profile address")
		name := fs.String("name", "", "display name")
		description := fs.String("description", "", "profile description")
		github := fs.String("github", "", "github login")
		fs.Parse(args)
		if *address == "" {
			return errors.New("missing -address")
		}
		return a.profiles.Update(ctx, *address, core.ProfileInput{
			Name: *name, Description: *description, GithubLogin: *github,
		})

	case "profile-delete":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		address := fs.String("address", "", "profile address")
		fs.Parse(args)
		if *address == "" {
			return errors.New("missing -address")
		}
		return a.profiles.Delete(ctx, *address)

	case "badges":
		badges, err := a.dir.Badges(ctx)
		if err != nil {
			return err
		}
		for _, b := range badges {
			fmt.Printf("%s\t%s\t(by %s)\n", b.Name, b.Description, b.Creator)
		}
		return nil

	case "badge-create":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		name := fs.String("name", "", "badge name")
		description := fs.String("description", "", "badge description")
		fs.Parse(args)
		if *name == "" || *description == "" {
			return errors.New("missing -name or -description")
		}
		hash, err := a.mutate.CreateBadge(ctx, *name, *description)
		if err != nil {
			return err
		}
		fmt.Printf("badge created in %s\n", hash)
		return nil

	case "attest":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		recipient := fs.String("recipient", "", "recipient address")
		badge := fs.String("badge", "", "badge name")
		justification := fs.String("justification", "", "why the badge applies")
		fs.Parse(args)
		if *recipient == "" || *badge == "" {
			return errors.New("missing -recipient or -badge")
		}
		hash, err := a.mutate.CreateAttestation(ctx, *recipient, *badge, *justification)
		if err != nil {
			return err
		}
		fmt.Printf("attestation created in %s\n", hash)
		return nil

	case "attestations":
		attestations, err := a.dir.Attestations(ctx)
		if err != nil {
			return err
		}
		for _, att := range attestations {
			fmt.Printf("%s\t%s -> %s\t%s\n", att.BadgeName, att.Issuer, att.Recipient, att.Justification)
		}
		return nil

	case "balance":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		address := fs.String("address", "", "account address")
		fs.Parse(args)
		target := *address
		if target == "" {
			if a.signer == nil {
				return fmt.Errorf("%w: pass -address or configure a private key", core.ErrNoWallet)
			}
			target = a.signer.Address()
		}
		balance, err := a.dir.Balance(ctx, target)
		if err != nil {
			return err
		}
		fmt.Printf("%s HRD\n", balance.String())
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}
