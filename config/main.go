package config

import (
	"fmt"
	"strconv"
	"strings"

	db "bitbucket.org/konstbyte/backend/db"
	stripe "bitbucket.org/konstbyte/backend/stripe"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

type Configuration struct {
	JWTSecret           string `env:"JWT_SECRET,required"`
	Port                int    `env:"PORT,default=3001"`
	Timeout             int    `env:"TIMEOUT,default=10"`
	DB                  db.Storage
	SQL                 database
	AwsSMTP             awsSMTP
	AwsS3               awsS3
	Stripe              stripeConf
	Mail                mail
	Environment         string `env:"ENVIRONMENT,default=development"`
	AppName             string `env:"APP_NAME,default=konstbyte"`
	FrontendBaseURL     string `env:"FRONTEND_BASE_URL,default=https://www.konstbyte.se"`
	PasswordRecoverPath string `env:"PASSWORD_RECOVER_PATH,default=/account/password"`
}

type database struct {
	URL            string `env:"DATA_BASE_URL,required"`
	Name           string `env:"DATA_BASE_NAME,required"`
	User           string `env:"DATA_BASE_USER,required"`
	Port           int    `env:"DATA_BASE_PORT,default=3306"`
	Password       string `env:"DATA_BASE_PASSWORD,required"`
	OpenConnection int    `env:"DATA_BASE_MAX_OPEN_CONNECTION,default=5"`
}

type awsSMTP struct {
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
}

type stripeConf struct {
	BaseURL              string `env:"STRIPE_BASEURL,default=https://api.stripe.com"`
	SecretKey            string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret        string `env:"STRIPE_WEBHOOK_SECRET"`
	PathCheckoutSessions string `env:"STRIPE_PATH_CHECKOUT_SESSIONS,default=/v1/checkout/sessions"`
	Currency             string `env:"STRIPE_CURRENCY,default=sek"`
	SuccessPath          string `env:"STRIPE_SUCCESS_PATH,default=/checkout/success"`
	CancelPath           string `env:"STRIPE_CANCEL_PATH,default=/checkout/cancel"`
}

type awsS3 struct {
	S3Region      string `env:"S3_REGION"`
	S3Bucket      string `env:"S3_BUCKET"`
	S3Url         string `env:"S3_URL"`
	S3PathReceipt string `env:"S3_PATH_RECEIPT,default=receipt"`
}

type mail struct {
	PaymentSuccess  mailPaymentSuccess
	PasswordRecover mailPasswordRecover
	NameFrom        string `env:"MAIL_NAME_FROM"`
	EmailFrom       string `env:"MAIL_EMAIL_FROM"`
	Folder          string `env:"MAIL_FOLDER"`
	Path            string `env:"MAIL_PATH"`
}

type mailPasswordRecover struct {
	Subject  string `env:"MAIL_PASSWORD_RECOVER_SUBJECT"`
	Template string `env:"MAIL_PASSWORD_RECOVER_TEMPLATE"`
}

type mailPaymentSuccess struct {
	Subject  string `env:"MAIL_PAYMENT_SUCCESS_SUBJECT"`
	Template string `env:"MAIL_PAYMENT_SUCCESS_TEMPLATE"`
	FileName string `env:"MAIL_PAYMENT_SUCCESS_FILENAME"`
}

type AppContext struct {
	Config  Configuration
	SQLConn *sqlx.DB
	DB      db.Storage
	AwsSMTP *gomail.Dialer
	AwsS3   *session.Session
	Stripe  *stripe.Stripe
}

func (c *Configuration) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func CreateConnectionSQL(conf database) (*sqlx.DB, error) {
	conn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", conf.User, conf.Password, conf.URL, strconv.Itoa(conf.Port), conf.Name)
	connection, err := sqlx.Connect("mysql", conn)
	if err != nil {
		return nil, err
	}
	return connection, nil
}

func CreateNewConnectionSMTP(conf awsSMTP) *gomail.Dialer {
	conn := gomail.NewDialer(conf.SMTPHost, conf.SMTPPort, conf.SMTPUser, conf.SMTPPassword)
	return conn
}

func CreateStripeIntegration(conf stripeConf) *stripe.Stripe {
	s := stripe.Stripe{
		BaseURL:              conf.BaseURL,
		SecretKey:            conf.SecretKey,
		PathCheckoutSessions: conf.PathCheckoutSessions,
		Currency:             conf.Currency,
	}

	return &s
}

func CreateNewSessionS3(conf awsS3) (*session.Session, error) {
	s, err := session.NewSession(&aws.Config{Region: aws.String(conf.S3Region)})
	return s, err
}

func GetLogger() *log.Entry {
	return log.NewEntry(log.StandardLogger())
}
