// Package exchange exporta, importa y borra el conjunto completo de datos, y aplica la
// migración de datos semilla al arrancar.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-inventario/internal/domain/costing"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/domain/repository"
	"github.com/jhoicas/agro-inventario/internal/domain/stock"
	"github.com/jhoicas/agro-inventario/pkg/logger"
)

// ErrUnrecognizedFormat el documento no corresponde a ningún formato conocido. No se escribe nada.
var ErrUnrecognizedFormat = errors.New("formato no reconocido")

// ExportVersion versión del documento de exportación.
const ExportVersion = "3.0"

// Formatos de importación detectados.
const (
	FormatCostApp  = "cost-app"
	FormatBackup   = "backup"
	FormatStockApp = "stock-app"
)

// Document copia completa de los datos.
type Document struct {
	Products   []entity.Product   `json:"products"`
	Movements  []entity.Movement  `json:"movements"`
	StockAB1   []entity.StockLine `json:"stockAB1"`
	StockAB2   []entity.StockLine `json:"stockAB2"`
	StockAB3   []entity.StockLine `json:"stockAB3"`
	Suppliers  []string           `json:"suppliers"`
	Settings   entity.Settings    `json:"settings"`
	Mixes      []entity.Mix       `json:"melanges"`
	CostData   entity.CostData    `json:"costData"`
	ExportDate time.Time          `json:"exportDate"`
	Version    string             `json:"version"`
}

// StockLines líneas de inventario de una finca.
func (d *Document) StockLines(farm string) []entity.StockLine {
	if ref := d.stockRef(farm); ref != nil {
		return *ref
	}
	return nil
}

func (d *Document) stockRef(farm string) *[]entity.StockLine {
	switch farm {
	case entity.FarmAB1:
		return &d.StockAB1
	case entity.FarmAB2:
		return &d.StockAB2
	case entity.FarmAB3:
		return &d.StockAB3
	}
	return nil
}

// stockFields claves del documento por finca.
var stockFields = map[string]string{
	entity.FarmAB1: "stockAB1",
	entity.FarmAB2: "stockAB2",
	entity.FarmAB3: "stockAB3",
}

// Result resumen de una importación.
type Result struct {
	Format    string `json:"format"`
	Products  int    `json:"products"`
	Movements int    `json:"movements"`
	Suppliers int    `json:"suppliers"`
	Snapshots int    `json:"snapshots"`
	CostLines int    `json:"costLines"`
}

// Repos puertos que lee y escribe el servicio.
type Repos struct {
	Products  repository.ProductRepository
	Movements repository.MovementRepository
	Snapshots repository.SnapshotRepository
	Suppliers repository.SupplierRepository
	Settings  repository.SettingsRepository
	Mixes     repository.MixRepository
	CostData  repository.CostDataRepository
	Schema    repository.SchemaRepository
}

// Clearer borra todas las colecciones.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Service exportación, importación, borrado y migración.
type Service struct {
	repos   Repos
	clearer Clearer
	log     *logger.Logger
	now     func() time.Time
}

// NewService construye el servicio.
func NewService(repos Repos, clearer Clearer, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repos: repos, clearer: clearer, log: log, now: time.Now}
}

// Export arma el documento con todas las colecciones.
func (s *Service) Export(ctx context.Context) (*Document, error) {
	doc := &Document{ExportDate: s.now().UTC(), Version: ExportVersion}
	var err error
	if doc.Products, err = s.repos.Products.List(ctx); err != nil {
		return nil, err
	}
	if doc.Movements, err = s.repos.Movements.List(ctx); err != nil {
		return nil, err
	}
	for _, farm := range entity.FarmIDs() {
		lines, err := s.repos.Snapshots.Lines(ctx, farm)
		if err != nil {
			return nil, err
		}
		if lines == nil {
			lines = []entity.StockLine{}
		}
		*doc.stockRef(farm) = lines
	}
	if doc.Suppliers, err = s.repos.Suppliers.List(ctx); err != nil {
		return nil, err
	}
	if doc.Settings, err = s.repos.Settings.Get(ctx); err != nil {
		return nil, err
	}
	if doc.Mixes, err = s.repos.Mixes.List(ctx); err != nil {
		return nil, err
	}
	if doc.CostData, err = s.repos.CostData.Get(ctx); err != nil {
		return nil, err
	}
	if doc.Products == nil {
		doc.Products = []entity.Product{}
	}
	if doc.Movements == nil {
		doc.Movements = []entity.Movement{}
	}
	if doc.Suppliers == nil {
		doc.Suppliers = []string{}
	}
	if doc.Mixes == nil {
		doc.Mixes = []entity.Mix{}
	}
	return doc, nil
}

// ExportJSON documento serializado con sangría.
func (s *Service) ExportJSON(ctx context.Context) ([]byte, error) {
	doc, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Clear borra todas las colecciones. La versión de esquema se conserva.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.clearer.Clear(ctx); err != nil {
		return err
	}
	s.log.Info().Msg("datos borrados")
	return nil
}

// Import detecta el formato y aplica la importación. Orden de detección: cultures (costos),
// movements (copia completa), stockMovements o products (app de stock).
func (s *Service) Import(ctx context.Context, raw []byte) (*Result, error) {
	raw = toUTF8(raw)
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, ErrUnrecognizedFormat
	}
	has := func(key string) bool {
		v, ok := fields[key]
		return ok && len(v) > 0 && string(v) != "null"
	}

	var (
		res *Result
		err error
	)
	switch {
	case has("cultures"):
		res, err = s.importCostApp(ctx, fields["cultures"])
	case has("movements"):
		res, err = s.importBackup(ctx, fields, has)
	case has("stockMovements") || has("products"):
		res, err = s.importStockApp(ctx, fields, has)
	default:
		return nil, ErrUnrecognizedFormat
	}
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("format", res.Format).Int("products", res.Products).Int("movements", res.Movements).
		Int("cost_lines", res.CostLines).Msg("importación aplicada")
	return res, nil
}

func decode(fields map[string]json.RawMessage, key string, dst any) error {
	if err := json.Unmarshal(fields[key], dst); err != nil {
		return fmt.Errorf("%w: campo %s: %w", ErrUnrecognizedFormat, key, err)
	}
	return nil
}

// costAppLine línea del formato de la app de costos.
type costAppLine struct {
	Name  string            `json:"nom"`
	Qty   []decimal.Decimal `json:"qte"`
	Price decimal.Decimal   `json:"prix"`
}

// farmFromLabel resuelve la finca por el dígito de la etiqueta ("AGB2", "Agro Berry 3").
func farmFromLabel(label string) string {
	switch {
	case strings.Contains(label, "2"):
		return entity.FarmAB2
	case strings.Contains(label, "3"):
		return entity.FarmAB3
	}
	return entity.FarmAB1
}

func (s *Service) importCostApp(ctx context.Context, raw json.RawMessage) (*Result, error) {
	var cultures map[string]map[string]map[string][]costAppLine
	if err := json.Unmarshal(raw, &cultures); err != nil {
		return nil, fmt.Errorf("%w: cultures: %w", ErrUnrecognizedFormat, err)
	}
	data, err := s.repos.CostData.Get(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = entity.CostData{}
	}
	res := &Result{Format: FormatCostApp}
	for label, byCulture := range cultures {
		farm := farmFromLabel(label)
		for culture, byCategory := range byCulture {
			for category, lines := range byCategory {
				for _, l := range lines {
					data.Append(farm, culture, category, entity.CostLine{
						Name: l.Name, UnitPrice: l.Price, MonthlyQty: l.Qty,
					})
					res.CostLines++
				}
			}
		}
	}
	if err := s.repos.CostData.Save(ctx, data); err != nil {
		return nil, err
	}
	return res, nil
}

// legacyInventoryItem inventario mensual del formato anterior, con una cantidad por finca.
type legacyInventoryItem struct {
	Month   string          `json:"month"`
	Product string          `json:"product"`
	AGB1    decimal.Decimal `json:"agb1"`
	AGB2    decimal.Decimal `json:"agb2"`
	AGB3    decimal.Decimal `json:"agb3"`
}

// importBackup copia completa: cada colección presente reemplaza a la actual.
// Se decodifica todo antes de escribir.
func (s *Service) importBackup(ctx context.Context, fields map[string]json.RawMessage, has func(string) bool) (*Result, error) {
	var doc Document
	if err := decode(fields, "movements", &doc.Movements); err != nil {
		return nil, err
	}
	if has("products") {
		if err := decode(fields, "products", &doc.Products); err != nil {
			return nil, err
		}
	}
	stockLines := map[string][]entity.StockLine{}
	for farm, key := range stockFields {
		if !has(key) {
			continue
		}
		var lines []entity.StockLine
		if err := decode(fields, key, &lines); err != nil {
			return nil, err
		}
		stockLines[farm] = lines
	}
	if has("suppliers") {
		if err := decode(fields, "suppliers", &doc.Suppliers); err != nil {
			return nil, err
		}
	}
	var settings *entity.Settings
	if has("settings") {
		settings = &entity.Settings{}
		if err := decode(fields, "settings", settings); err != nil {
			return nil, err
		}
	}
	if has("melanges") {
		if err := decode(fields, "melanges", &doc.Mixes); err != nil {
			return nil, err
		}
	}
	if has("costData") {
		if err := decode(fields, "costData", &doc.CostData); err != nil {
			return nil, err
		}
	}
	var legacy []legacyInventoryItem
	if has("inventory") {
		if err := decode(fields, "inventory", &legacy); err != nil {
			return nil, err
		}
	}

	res := &Result{Format: FormatBackup}
	movements := normalizeMovements(doc.Movements)
	if err := s.repos.Movements.ReplaceAll(ctx, movements); err != nil {
		return nil, err
	}
	res.Movements = len(movements)
	if has("products") {
		products := normalizeProducts(doc.Products)
		if err := s.repos.Products.ReplaceAll(ctx, products); err != nil {
			return nil, err
		}
		res.Products = len(products)
	}
	for _, farm := range entity.FarmIDs() {
		lines, ok := stockLines[farm]
		if !ok {
			continue
		}
		if err := s.repos.Snapshots.SetLines(ctx, farm, lines); err != nil {
			return nil, err
		}
		res.Snapshots += len(entity.SnapshotsFromLines(farm, lines))
	}
	if has("suppliers") {
		if err := s.repos.Suppliers.ReplaceAll(ctx, doc.Suppliers); err != nil {
			return nil, err
		}
		res.Suppliers = len(doc.Suppliers)
	}
	if settings != nil {
		if err := s.repos.Settings.Save(ctx, *settings); err != nil {
			return nil, err
		}
	}
	if has("melanges") {
		if err := s.repos.Mixes.ReplaceAll(ctx, doc.Mixes); err != nil {
			return nil, err
		}
	}
	if has("costData") {
		if err := s.repos.CostData.Save(ctx, doc.CostData); err != nil {
			return nil, err
		}
	}
	if len(legacy) > 0 {
		n, err := s.importLegacyInventory(ctx, legacy, fields)
		if err != nil {
			return nil, err
		}
		res.Snapshots += n
	}
	return res, nil
}

// importLegacyInventory convierte el inventario mensual antiguo en inventarios físicos
// fechados al cierre del período de ese mes.
func (s *Service) importLegacyInventory(ctx context.Context, items []legacyInventoryItem, fields map[string]json.RawMessage) (int, error) {
	ref := entity.DateOf(s.now())
	var exported time.Time
	if raw, ok := fields["exportDate"]; ok && json.Unmarshal(raw, &exported) == nil && !exported.IsZero() {
		ref = entity.DateOf(exported)
	}
	periods := stock.SeasonPeriods(costing.SeasonStartYear(ref))

	byFarm := map[string]map[string]*entity.Snapshot{}
	var order []string
	for _, it := range items {
		p, ok := stock.FindPeriod(periods, strings.ToUpper(it.Month))
		if !ok {
			s.log.Warn().Str("month", it.Month).Str("product", it.Product).Msg("mes de inventario desconocido; se omite")
			continue
		}
		for farm, qty := range map[string]decimal.Decimal{entity.FarmAB1: it.AGB1, entity.FarmAB2: it.AGB2, entity.FarmAB3: it.AGB3} {
			if !qty.IsPositive() {
				continue
			}
			if byFarm[farm] == nil {
				byFarm[farm] = map[string]*entity.Snapshot{}
			}
			snap, ok := byFarm[farm][p.Key]
			if !ok {
				snap = &entity.Snapshot{Farm: farm, Date: p.End}
				byFarm[farm][p.Key] = snap
				order = append(order, farm+"|"+p.Key)
			}
			snap.Lines = append(snap.Lines, entity.StockLine{Product: it.Product, Quantity: qty, Date: p.End})
		}
	}
	for _, k := range order {
		farm, key, _ := strings.Cut(k, "|")
		if err := s.repos.Snapshots.Save(ctx, *byFarm[farm][key]); err != nil {
			return 0, err
		}
	}
	return len(order), nil
}

// importStockApp fusiona el formato de la app de stock: productos nuevos por nombre,
// movimientos nuevos por id, unión de proveedores y stock por finca reemplazado si viene.
func (s *Service) importStockApp(ctx context.Context, fields map[string]json.RawMessage, has func(string) bool) (*Result, error) {
	var incomingProducts []entity.Product
	var incomingMovements []entity.Movement
	var suppliers []string
	if has("products") {
		if err := decode(fields, "products", &incomingProducts); err != nil {
			return nil, err
		}
	}
	if has("stockMovements") {
		if err := decode(fields, "stockMovements", &incomingMovements); err != nil {
			return nil, err
		}
	}
	if has("suppliers") {
		if err := decode(fields, "suppliers", &suppliers); err != nil {
			return nil, err
		}
	}
	stockLines := map[string][]entity.StockLine{}
	for farm, key := range stockFields {
		if !has(key) {
			continue
		}
		var lines []entity.StockLine
		if err := decode(fields, key, &lines); err != nil {
			return nil, err
		}
		stockLines[farm] = lines
	}

	res := &Result{Format: FormatStockApp}

	if len(incomingProducts) > 0 {
		existing, err := s.repos.Products.List(ctx)
		if err != nil {
			return nil, err
		}
		names := make(map[string]bool, len(existing))
		for _, p := range existing {
			names[strings.ToUpper(strings.TrimSpace(p.Name))] = true
		}
		merged := existing
		now := s.now()
		for _, p := range normalizeProducts(incomingProducts) {
			key := strings.ToUpper(strings.TrimSpace(p.Name))
			if key == "" || names[key] {
				continue
			}
			if p.CreatedAt.IsZero() {
				p.CreatedAt = now
			}
			names[key] = true
			merged = append(merged, p)
			res.Products++
		}
		if res.Products > 0 {
			if err := s.repos.Products.ReplaceAll(ctx, merged); err != nil {
				return nil, err
			}
		}
	}

	if len(incomingMovements) > 0 {
		existing, err := s.repos.Movements.List(ctx)
		if err != nil {
			return nil, err
		}
		ids := make(map[string]bool, len(existing))
		for _, m := range existing {
			ids[m.ID] = true
		}
		merged := existing
		for _, m := range normalizeMovements(incomingMovements) {
			if ids[m.ID] {
				continue
			}
			ids[m.ID] = true
			merged = append(merged, m)
			res.Movements++
		}
		if res.Movements > 0 {
			if err := s.repos.Movements.ReplaceAll(ctx, merged); err != nil {
				return nil, err
			}
		}
	}

	if len(suppliers) > 0 {
		before, err := s.repos.Suppliers.List(ctx)
		if err != nil {
			return nil, err
		}
		after, err := s.repos.Suppliers.Add(ctx, suppliers...)
		if err != nil {
			return nil, err
		}
		res.Suppliers = len(after) - len(before)
	}

	for _, farm := range entity.FarmIDs() {
		lines, ok := stockLines[farm]
		if !ok {
			continue
		}
		if err := s.repos.Snapshots.SetLines(ctx, farm, lines); err != nil {
			return nil, err
		}
		res.Snapshots += len(entity.SnapshotsFromLines(farm, lines))
	}
	return res, nil
}

// normalizeMovements completa ids faltantes y traduce destinos legados.
func normalizeMovements(in []entity.Movement) []entity.Movement {
	out := make([]entity.Movement, 0, len(in))
	for _, m := range in {
		if m.ID == "" {
			m.ID = uuid.Must(uuid.NewV7()).String()
		}
		m.Destination = entity.NormalizeDestination(m.Destination)
		out = append(out, m)
	}
	return out
}

func normalizeProducts(in []entity.Product) []entity.Product {
	out := make([]entity.Product, 0, len(in))
	for _, p := range in {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		out = append(out, p)
	}
	return out
}
