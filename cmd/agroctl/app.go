package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/jhoicas/agro-inventario/internal/application/backup"
	"github.com/jhoicas/agro-inventario/internal/application/dto"
	"github.com/jhoicas/agro-inventario/internal/bootstrap"
	"github.com/jhoicas/agro-inventario/pkg/config"
	"github.com/jhoicas/agro-inventario/pkg/logger"
)

type appKey struct{}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "agroctl",
		Usage:  "Inventario de insumos agrícolas desde la terminal",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Nivel de log (debug, info, warn, error)",
				Value:   "warn",
				EnvVars: []string{"AGROCTL_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "export",
				Usage:  "Exportar todos los datos como JSON",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Archivo destino (vacío = stdout)"}},
				Before: openApp,
				After:  closeApp,
				Action: runExport,
			},
			{
				Name:      "import",
				Usage:     "Importar un respaldo o una exportación de las apps de costos o de stock",
				ArgsUsage: "<archivo.json>",
				Before:    openApp,
				After:     closeApp,
				Action:    runImport,
			},
			{
				Name:   "clear",
				Usage:  "Borrar todos los datos (conserva la versión de esquema)",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "yes", Usage: "Confirmar el borrado"}},
				Before: openApp,
				After:  closeApp,
				Action: runClear,
			},
			{
				Name:   "migrate",
				Usage:  "Aplicar la migración del catálogo semilla",
				Before: openApp,
				After:  closeApp,
				Action: runMigrate,
			},
			{
				Name:  "balance",
				Usage: "Saldo de una ubicación",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "location", Aliases: []string{"l"}, Value: "WAREHOUSE", Usage: "WAREHOUSE o finca"},
					&cli.StringFlag{Name: "as-of", Usage: "Fecha de corte (YYYY-MM-DD)"},
					&cli.BoolFlag{Name: "json", Usage: "Salida JSON"},
				},
				Before: openApp,
				After:  closeApp,
				Action: runBalance,
			},
			{
				Name:   "alerts",
				Usage:  "Alertas de stock y consumo",
				Before: openApp,
				After:  closeApp,
				Action: runAlerts,
			},
			{
				Name:  "report",
				Usage: "Informes",
				Subcommands: []*cli.Command{
					{
						Name:  "reconciliation",
						Usage: "Conciliación de las fincas en un período",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "period", Required: true, Usage: "SEPTEMBRE, ..., AOUT"},
							&cli.IntFlag{Name: "season", Usage: "Año de inicio de campaña"},
							&cli.StringFlag{Name: "pdf", Usage: "Escribir el PDF en este archivo"},
						},
						Before: openApp,
						After:  closeApp,
						Action: runReconciliation,
					},
					{
						Name:  "costs",
						Usage: "Costos de producción por categoría y mes",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "culture", Required: true, Usage: "Myrtille | Fraise"},
							&cli.StringFlag{Name: "farm", Usage: "Finca (vacío = todas)"},
							&cli.IntFlag{Name: "season", Usage: "Año de inicio de campaña"},
							&cli.IntFlag{Name: "months", Value: 12, Usage: "5 o 12"},
							&cli.StringFlag{Name: "pdf", Usage: "Escribir el PDF en este archivo"},
						},
						Before: openApp,
						After:  closeApp,
						Action: runCosts,
					},
				},
			},
			{
				Name:  "backup",
				Usage: "Respaldo remoto",
				Subcommands: []*cli.Command{
					{Name: "now", Usage: "Subir un respaldo ahora", Before: openApp, After: closeApp, Action: runBackupNow},
					{Name: "restore", Usage: "Restaurar el último respaldo", Before: openApp, After: closeApp, Action: runRestore},
					{Name: "check", Usage: "Verificar credenciales y destino", Before: openApp, After: closeApp, Action: runCheck},
				},
			},
		},
	}
}

func openApp(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: c.String("log-level")})
	app, err := bootstrap.New(c.Context, cfg, log)
	if err != nil {
		return err
	}
	c.Context = context.WithValue(c.Context, appKey{}, app)
	return nil
}

// closeApp espera la subida pendiente antes de cerrar: un proceso corto no debe perder el
// respaldo que dispararon sus escrituras.
func closeApp(c *cli.Context) error {
	app, ok := c.Context.Value(appKey{}).(*bootstrap.App)
	if !ok {
		return nil
	}
	if app.Scheduler.Enabled() && app.Scheduler.Status().State == backup.StatePending {
		if _, err := app.Scheduler.Now(c.Context); err != nil {
			fmt.Fprintf(c.App.ErrWriter, "respaldo automático fallido: %v\n", err)
		}
	}
	return app.Close()
}

func appFrom(c *cli.Context) *bootstrap.App {
	return c.Context.Value(appKey{}).(*bootstrap.App)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runExport(c *cli.Context) error {
	raw, err := appFrom(c).Exchange.ExportJSON(c.Context)
	if err != nil {
		return err
	}
	if path := c.String("out"); path != "" {
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "exportado en %s (%d bytes)\n", path, len(raw))
		return nil
	}
	_, err = c.App.Writer.Write(append(raw, '\n'))
	return err
}

func runImport(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("falta el archivo a importar")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	res, err := appFrom(c).Exchange.Import(c.Context, raw)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, res)
}

func runClear(c *cli.Context) error {
	if !c.Bool("yes") {
		return errors.New("el borrado requiere --yes")
	}
	if err := appFrom(c).Exchange.Clear(c.Context); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "datos borrados")
	return nil
}

func runMigrate(c *cli.Context) error {
	res, err := appFrom(c).Exchange.Migrate(c.Context)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, res)
}

func runBalance(c *cli.Context) error {
	out, err := appFrom(c).Stock.Balance(c.Context, dto.BalanceQuery{
		Location: c.String("location"),
		AsOf:     c.String("as-of"),
	})
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, out)
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PRODUCTO\tCANTIDAD\tUNIDAD\tPRECIO MEDIO\tVALOR\t")
	for _, l := range out.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", l.Product, l.Quantity.StringFixed(2), l.Unit,
			l.AvgPrice.StringFixed(2), l.Value.StringFixed(2))
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t\t%s\t\n", out.TotalValue.StringFixed(2))
	return tw.Flush()
}

func runAlerts(c *cli.Context) error {
	out, err := appFrom(c).Stock.Alerts(c.Context)
	if err != nil {
		return err
	}
	for _, a := range out.Items {
		fmt.Fprintf(c.App.Writer, "[%s] %s\n", a.Severity, a.Message)
	}
	fmt.Fprintf(c.App.Writer, "%d críticas, %d avisos, %d informativas\n", out.Critical, out.Warning, out.Info)
	return nil
}

func runReconciliation(c *cli.Context) error {
	app := appFrom(c)
	out, err := app.Stock.Reconciliation(c.Context, dto.ReconciliationQuery{
		Period:    c.String("period"),
		StartYear: c.Int("season"),
	})
	if err != nil {
		return err
	}
	if path := c.String("pdf"); path != "" {
		doc, err := app.PDF.ReconciliationPDF(c.Context, out)
		if err != nil {
			return err
		}
		return writeFile(c, path, doc)
	}
	return printJSON(c.App.Writer, out)
}

func runCosts(c *cli.Context) error {
	app := appFrom(c)
	out, err := app.Stock.CostReport(c.Context, dto.CostReportQuery{
		Farm:      c.String("farm"),
		Culture:   c.String("culture"),
		StartYear: c.Int("season"),
		Months:    c.Int("months"),
	})
	if err != nil {
		return err
	}
	if path := c.String("pdf"); path != "" {
		doc, err := app.PDF.CostReportPDF(c.Context, out)
		if err != nil {
			return err
		}
		return writeFile(c, path, doc)
	}
	return printJSON(c.App.Writer, out)
}

func runBackupNow(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(c.Context, 2*time.Minute)
	defer cancel()
	r, err := appFrom(c).Backup.Now(ctx)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, r)
}

func runRestore(c *cli.Context) error {
	res, err := appFrom(c).Backup.Restore(c.Context)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, res)
}

func runCheck(c *cli.Context) error {
	res, err := appFrom(c).Backup.Check(c.Context)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, res)
}

func writeFile(c *cli.Context, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "escrito %s (%d bytes)\n", path, len(data))
	return nil
}
