// agroctl opera el inventario desde la línea de comandos sobre el mismo almacén que la API:
// exportar e importar datos, respaldar y restaurar, consultar saldos e informes.
//
// Uso: agroctl [--log-level debug] <comando> [opciones]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
