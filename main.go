package main

import (
	"log"
	"os"
	"time"

	"bitbucket.org/konstbyte/backend/api"
	"bitbucket.org/konstbyte/backend/server"
	"github.com/joho/godotenv"
	"github.com/urfave/cli"
)

// @title konstbyte backend API
// @version 0.1
// @description Marketplace checkout and payment reconciliation service.

// @host api.konstbyte.se
// @BasePath /
// @schemes http https

// @securityDefinitions.apiKey ApiKeyAuth
// @in header
// @name Authorization

func main() {
	_ = godotenv.Load("dev.env")

	app := cli.NewApp()
	app.Name = "Konstbyte Backend Service"
	app.Version = "1.00"
	app.Compiled = time.Now()
	app.Commands = []cli.Command{
		{
			Name:  "backend-up",
			Usage: "This command starts the backend service",
			Action: func(c *cli.Context) error {
				StartServer(api.GetRoutes())
				return nil
			},
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func StartServer(routes []*server.Route) {
	ctx := server.GetAppContext()
	ctx.CreateMySQLConnection()
	ctx.CreateSMTPConnection()
	ctx.CreateStripeIntegration()
	ctx.CreateNewSessionS3()

	server.UpServer(routes, ctx)
}
