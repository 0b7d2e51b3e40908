package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sikseb/internal/apiclient"
	"sikseb/internal/controller"
	"sikseb/internal/services"
	"sikseb/internal/session"
	"sikseb/internal/view"
	"sikseb/pkg/config"
	apperrors "sikseb/pkg/errors"
	"sikseb/pkg/logger"
)

const usage = `roleadmin - manajemen role SIKSEB

Usage:
  roleadmin <command> [flags] [args]

Commands:
  ping                         cek koneksi ke backend
  catalog-check                bandingkan katalog permission dengan backend
  login [-email E -password P] login (tanpa flag: auto login)
  logout                       hapus token tersimpan
  whoami                       tampilkan sesi aktif
  list [search]                daftar role
  show <role>                  detail role beserta user dan permission
  users-of <role>              semua user pemegang role
  create -name N [-status S] -perms a,b [-group G]
  update <role> [-name N] [-status S] [-perms a,b]
  delete <role> [-yes]
  perms [<role> [-toggle p]... [-group G]... [-set a,b]]
  users [-page N]              daftar user
  watch [-cron SPEC]           tampilkan daftar role secara berkala

<role> dapat berupa id atau nama role.
`

type app struct {
	cfg     *config.Config
	out     io.Writer
	errOut  io.Writer
	in      io.Reader
	client  *apiclient.Client
	session *session.Store
	roles   *services.RoleService
	users   *services.UserService
	perms   *services.PermissionService
	console *controller.Controller
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	tokens, err := session.NewStoreFromConfig(cfg)
	if err != nil {
		logger.GetLogger().Errorf("Failed to open token store: %v", err)
		return 1
	}
	if c, ok := tokens.(io.Closer); ok {
		defer c.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, tokens, os.Stdout, os.Stderr, os.Stdin)
	return a.run(ctx, os.Args[1], os.Args[2:])
}

func newApp(cfg *config.Config, tokens session.TokenStore, out, errOut io.Writer, in io.Reader) *app {
	appLogger := logger.GetLogger()

	client := apiclient.New(cfg.API.BaseURL, cfg.API.Timeout,
		apiclient.WithLogger(appLogger.WithField("component", "apiclient")))
	sess := session.NewStore(tokens, client,
		session.WithTokenKey(cfg.Token.Key),
		session.WithAutoLoginCredentials(cfg.Auth.Email, cfg.Auth.Password),
		session.WithLogger(appLogger.WithField("component", "session")),
	)
	client.SetCredentials(sess)

	roles := services.NewRoleService(client)
	console := controller.New(sess, roles, services.NewRoleUsersService(client), controller.Options{
		DeletePolicy:       controller.ParseDeletePolicy(cfg.Console.DeleteModalPolicy),
		LegacyNameBaseline: cfg.Console.LegacyNameBaseline,
		Logger:             appLogger.WithField("component", "console"),
	})

	return &app{
		cfg:     cfg,
		out:     out,
		errOut:  errOut,
		in:      in,
		client:  client,
		session: sess,
		roles:   roles,
		users:   services.NewUserService(client),
		perms:   services.NewPermissionService(client),
		console: console,
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) int {
	var err error
	switch cmd {
	case "ping":
		err = a.ping(ctx)
	case "catalog-check":
		err = a.catalogCheck(ctx)
	case "login":
		err = a.login(ctx, args)
	case "logout":
		err = a.logout(ctx)
	case "whoami":
		err = a.whoami(ctx)
	case "list":
		err = a.list(ctx, args)
	case "show":
		err = a.show(ctx, args)
	case "users-of":
		err = a.usersOf(ctx, args)
	case "create":
		err = a.create(ctx, args)
	case "update":
		err = a.update(ctx, args)
	case "delete":
		err = a.delete(ctx, args)
	case "perms":
		err = a.editPerms(ctx, args)
	case "users":
		err = a.listUsers(ctx, args)
	case "watch":
		err = a.watch(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return 0
	default:
		fmt.Fprintf(a.errOut, "perintah tidak dikenal: %s\n\n%s", cmd, usage)
		return 2
	}

	if err == nil {
		return 0
	}
	if apperrors.KindOf(err) == apperrors.KindAuthentication {
		view.RenderAuthError(a.errOut, err.Error())
	} else {
		fmt.Fprintf(a.errOut, "! %s\n", err)
	}
	return 1
}
