package services

import (
	"context"
	"fmt"

	"gestion-hospitaliere/internal/modules/dashboard/dto"

	"github.com/xuri/excelize/v2"
)

const (
	SheetStatistiques = "Statistiques"
	SheetOccupation   = "Occupation"
	SheetRendezvous   = "Rendez-vous"
	exportPeriode     = dto.Periode30Jours
)

// Export classeur XLSX du tableau de bord (statistiques, occupation, rendez-vous)
func (s *DashboardService) Export(ctx context.Context) ([]byte, error) {
	overview, err := s.Overview(ctx)
	if err != nil {
		return nil, err
	}
	graphiques, err := s.Graphiques(ctx, exportPeriode)
	if err != nil {
		return nil, err
	}
	return BuildWorkbook(overview, graphiques)
}

type sheet struct {
	name   string
	header []interface{}
	rows   [][]interface{}
	widths []float64
}

// BuildWorkbook construit le classeur à partir des projections déjà calculées
func BuildWorkbook(overview *dto.Dashboard, graphiques *dto.Graphiques) ([]byte, error) {
	st := overview.Statistiques
	occ := overview.OccupationLits

	sheets := []sheet{
		{
			name:   SheetStatistiques,
			header: []interface{}{"Indicateur", "Valeur"},
			rows: [][]interface{}{
				{"Patients", st.TotalPatients},
				{"Médecins", st.TotalMedecins},
				{"Chambres", st.TotalChambres},
				{"Lits", st.TotalLits},
				{"Lits disponibles", st.LitsDisponibles},
				{"Lits occupés", st.LitsOccupes},
				{"Rendez-vous aujourd'hui", st.RendezvousAujourdhui},
				{"Rendez-vous cette semaine", st.RendezvousSemaine},
			},
			widths: []float64{30, 12},
		},
		occupationSheet(occ, graphiques.OccupationChambresParType),
		rendezvousSheet(overview, graphiques),
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("style d'en-tête: %w", err)
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return nil, fmt.Errorf("feuille %s: %w", sh.name, err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return nil, fmt.Errorf("feuille %s: %w", sh.name, err)
		}
		if err := writeSheet(f, sh, headerStyle); err != nil {
			return nil, fmt.Errorf("feuille %s: %w", sh.name, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("écriture classeur: %w", err)
	}
	return buf.Bytes(), nil
}

func occupationSheet(occ dto.OccupationLits, parType []dto.OccupationType) sheet {
	rows := make([][]interface{}, 0, len(parType)+1)
	for _, t := range parType {
		rows = append(rows, []interface{}{t.Type, t.Chambres, t.LitsTotal, t.LitsOccupes, t.TauxOccupation})
	}
	rows = append(rows, []interface{}{"Total", nil, occ.Total, occ.Occupes, occ.TauxOccupation})

	return sheet{
		name:   SheetOccupation,
		header: []interface{}{"Type de chambre", "Chambres", "Lits", "Lits occupés", "Taux d'occupation (%)"},
		rows:   rows,
		widths: []float64{20, 12, 10, 14, 22},
	}
}

// rendezvousSheet histogramme journalier puis répartition par statut
func rendezvousSheet(overview *dto.Dashboard, graphiques *dto.Graphiques) sheet {
	rows := make([][]interface{}, 0, len(graphiques.RendezvousParJour)+len(overview.RendezvousParStatut)+2)
	for _, j := range graphiques.RendezvousParJour {
		rows = append(rows, []interface{}{j.Date, j.Total})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Statut", "Total"})
	for _, sc := range overview.RendezvousParStatut {
		rows = append(rows, []interface{}{sc.Statut, sc.Total})
	}

	return sheet{
		name:   SheetRendezvous,
		header: []interface{}{"Date", "Rendez-vous"},
		rows:   rows,
		widths: []float64{16, 14},
	}
}

func writeSheet(f *excelize.File, sh sheet, headerStyle int) error {
	if err := f.SetSheetRow(sh.name, "A1", &sh.header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(sh.header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sh.name, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range sh.rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
			return err
		}
	}

	for i, w := range sh.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sh.name, col, col, w); err != nil {
			return err
		}
	}
	return nil
}
