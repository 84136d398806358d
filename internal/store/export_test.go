package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/ofrenda/core/internal/entity"
)

// seedStore fills a store with one of everything.
func seedStore(t *testing.T, s *Store) (entity.Memorial, entity.FamilyGroup, entity.VirtualOffering) {
	t.Helper()
	ctx := context.Background()

	m := testMemorial("Juan García")
	if _, err := s.SaveMemorial(ctx, m); err != nil {
		t.Fatalf("SaveMemorial() failed: %v", err)
	}

	g := entity.NewFamilyGroup("Familia García", "user-1", "rosa@example.com")
	if _, err := s.SaveFamilyGroup(ctx, g); err != nil {
		t.Fatalf("SaveFamilyGroup() failed: %v", err)
	}

	o := entity.NewVirtualOffering(entity.OfferingCempasuchil, m.ID)
	if _, err := s.SaveOffering(ctx, o); err != nil {
		t.Fatalf("SaveOffering() failed: %v", err)
	}

	if _, err := s.SavePreferences(ctx, entity.DefaultPreferences("user-1")); err != nil {
		t.Fatalf("SavePreferences() failed: %v", err)
	}
	return m, g, o
}

func TestExportData_IncludesEverything(t *testing.T) {
	s := newTestStore(t)
	m, g, o := seedStore(t, s)

	doc, err := s.ExportData(context.Background())
	if err != nil {
		t.Fatalf("ExportData() failed: %v", err)
	}

	if doc.Version != ExportVersion {
		t.Errorf("Version = %q, want %q", doc.Version, ExportVersion)
	}
	if doc.ExportedAt.IsZero() {
		t.Error("ExportedAt not set")
	}
	if len(doc.Memorials) != 1 || doc.Memorials[0].ID != m.ID {
		t.Errorf("Memorials = %+v, want the seeded memorial", doc.Memorials)
	}
	if len(doc.FamilyGroups) != 1 || doc.FamilyGroups[0].GroupID != g.GroupID {
		t.Errorf("FamilyGroups = %+v, want the seeded group", doc.FamilyGroups)
	}
	if len(doc.VirtualOfferings) != 1 || doc.VirtualOfferings[0].ID != o.ID {
		t.Errorf("VirtualOfferings = %+v, want the seeded offering", doc.VirtualOfferings)
	}
	if len(doc.UserPreferences) != 1 || doc.UserPreferences[0].UserID != "user-1" {
		t.Errorf("UserPreferences = %+v, want the seeded preferences", doc.UserPreferences)
	}
}

func TestImportData_RoundTrip(t *testing.T) {
	src := newTestStore(t)
	seedStore(t, src)
	ctx := context.Background()

	doc, err := src.ExportData(ctx)
	if err != nil {
		t.Fatalf("ExportData() failed: %v", err)
	}

	dst := newTestStore(t)
	if err := dst.ImportData(ctx, doc); err != nil {
		t.Fatalf("ImportData() failed: %v", err)
	}

	reExported, err := dst.ExportData(ctx)
	if err != nil {
		t.Fatalf("re-export failed: %v", err)
	}

	if len(reExported.Memorials) != len(doc.Memorials) {
		t.Errorf("memorials: %d after import, want %d", len(reExported.Memorials), len(doc.Memorials))
	}
	for i := range doc.Memorials {
		if reExported.Memorials[i].ID != doc.Memorials[i].ID {
			t.Errorf("memorial %d: id %s, want %s", i, reExported.Memorials[i].ID, doc.Memorials[i].ID)
		}
	}
	if len(reExported.FamilyGroups) != len(doc.FamilyGroups) {
		t.Errorf("groups: %d after import, want %d", len(reExported.FamilyGroups), len(doc.FamilyGroups))
	}
	if len(reExported.VirtualOfferings) != len(doc.VirtualOfferings) {
		t.Errorf("offerings: %d after import, want %d", len(reExported.VirtualOfferings), len(doc.VirtualOfferings))
	}
	if len(reExported.UserPreferences) != len(doc.UserPreferences) {
		t.Errorf("preferences: %d after import, want %d", len(reExported.UserPreferences), len(doc.UserPreferences))
	}
}

func TestImportData_ReplacesExistingData(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)
	ctx := context.Background()

	incoming := ExportDocument{
		Version:          ExportVersion,
		ExportedAt:       time.Now().UTC(),
		Memorials:        []entity.Memorial{testMemorial("Lupita")},
		FamilyGroups:     []entity.FamilyGroup{},
		VirtualOfferings: []entity.VirtualOffering{},
		UserPreferences:  []entity.UserPreferences{},
	}

	if err := s.ImportData(ctx, incoming); err != nil {
		t.Fatalf("ImportData() failed: %v", err)
	}

	memorials, err := s.GetMemorials(ctx)
	if err != nil {
		t.Fatalf("GetMemorials() failed: %v", err)
	}
	if len(memorials) != 1 || memorials[0].Name != "Lupita" {
		t.Errorf("import did not replace: %+v", memorials)
	}
	groups, err := s.GetFamilyGroups(ctx)
	if err != nil {
		t.Fatalf("GetFamilyGroups() failed: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("groups survived a replacing import: %d", len(groups))
	}
}

func TestImportData_NilCollectionRejected(t *testing.T) {
	s := newTestStore(t)

	doc := ExportDocument{
		Version:          ExportVersion,
		Memorials:        []entity.Memorial{},
		FamilyGroups:     nil,
		VirtualOfferings: []entity.VirtualOffering{},
		UserPreferences:  []entity.UserPreferences{},
	}
	err := s.ImportData(context.Background(), doc)
	if !errors.Is(err, ErrInvalidImport) {
		t.Errorf("ImportData() = %v, want ErrInvalidImport", err)
	}
}

func TestImportData_BadRecordAbortsAll(t *testing.T) {
	s := newTestStore(t)
	m, _, _ := seedStore(t, s)
	ctx := context.Background()

	bad := testMemorial("")
	doc := ExportDocument{
		Version:          ExportVersion,
		ExportedAt:       time.Now().UTC(),
		Memorials:        []entity.Memorial{testMemorial("Nueva"), bad},
		FamilyGroups:     []entity.FamilyGroup{},
		VirtualOfferings: []entity.VirtualOffering{},
		UserPreferences:  []entity.UserPreferences{},
	}

	err := s.ImportData(ctx, doc)
	if !IsValidationError(err) {
		t.Fatalf("ImportData() = %v, want ValidationError", err)
	}

	// The pre-import dataset survives untouched.
	memorials, err := s.GetMemorials(ctx)
	if err != nil {
		t.Fatalf("GetMemorials() failed: %v", err)
	}
	if len(memorials) != 1 || memorials[0].ID != m.ID {
		t.Errorf("aborted import damaged existing data: %+v", memorials)
	}
}

func TestParseExportDocument(t *testing.T) {
	valid := []byte(`{
		"version": "1",
		"exportedAt": "2024-11-02T00:00:00Z",
		"memorials": [],
		"familyGroups": [],
		"virtualOfferings": [],
		"userPreferences": []
	}`)
	doc, err := ParseExportDocument(valid)
	if err != nil {
		t.Fatalf("ParseExportDocument() failed on valid input: %v", err)
	}
	if doc.Version != "1" {
		t.Errorf("Version = %q, want %q", doc.Version, "1")
	}

	invalid := [][]byte{
		[]byte(`not json`),
		[]byte(`{"memorials": []}`),
		[]byte(`{"version": "1", "memorials": {}, "familyGroups": [], "virtualOfferings": [], "userPreferences": []}`),
		[]byte(`{"version": "1", "memorials": [], "familyGroups": []}`),
		[]byte(`{"version": "", "memorials": [], "familyGroups": [], "virtualOfferings": [], "userPreferences": []}`),
	}
	for i, data := range invalid {
		if _, err := ParseExportDocument(data); !errors.Is(err, ErrInvalidImport) {
			t.Errorf("case %d: ParseExportDocument() = %v, want ErrInvalidImport", i, err)
		}
	}
}

func TestClearAll(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)
	ctx := context.Background()

	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll() failed: %v", err)
	}

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats() failed: %v", err)
	}
	if stats.TotalMemorials != 0 || stats.TotalFamilyGroups != 0 || stats.TotalOfferings != 0 {
		t.Errorf("data survived ClearAll: %+v", stats)
	}
	prefs, err := s.GetPreferences(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetPreferences() failed: %v", err)
	}
	if prefs != nil {
		t.Error("preferences survived ClearAll")
	}
}

// TestExportDocument_Golden pins the export wire format. Fixed ids and
// timestamps keep the document byte-stable.
//
// Regenerate with:
//   go test ./internal/store -run TestExportDocument_Golden -update
func TestExportDocument_Golden(t *testing.T) {
	created := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	birth := time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)
	death := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	memorialID := "0192d7f0-8a44-7001-9a7e-0000000000a1"

	doc := ExportDocument{
		Version:    ExportVersion,
		ExportedAt: time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC),
		Memorials: []entity.Memorial{{
			ID:           memorialID,
			Name:         "Juan García",
			Relationship: "padre",
			BirthDate:    &birth,
			DeathDate:    &death,
			Story:        "Le encantaba el pan de muerto.",
			AltarLevel:   1,
			FamilyConnections: entity.FamilyConnections{
				Parents:  []string{},
				Children: []string{},
			},
			VirtualOfferings: entity.OfferingLayout{Items: []string{}},
			Sharing: entity.Sharing{
				SharedWith:  []string{},
				Permissions: []string{"view"},
			},
			SyncStatus: entity.SyncStatusLocal,
			CreatedAt:  created,
			UpdatedAt:  created,
		}},
		FamilyGroups: []entity.FamilyGroup{{
			GroupID: "0192d7f0-8a44-7002-9a7e-0000000000b2",
			Name:    "Familia García",
			Members: []entity.Member{{
				UserID:   "user-1",
				Email:    "rosa@example.com",
				Role:     entity.RoleAdmin,
				JoinedAt: created,
			}},
			SharedMemorials: []string{memorialID},
			InviteCode:      "a1b2c3d4",
			Settings: entity.GroupSettings{
				AllowNewMembers:    true,
				RequireApproval:    true,
				DefaultPermissions: []string{"view"},
			},
			CreatedAt: created,
		}},
		VirtualOfferings: []entity.VirtualOffering{{
			ID:         "0192d7f0-8a44-7003-9a7e-0000000000c3",
			Type:       entity.OfferingCempasuchil,
			Position:   entity.Position{X: 1.5, Y: 0, Z: -2},
			MemorialID: memorialID,
			Message:    "Te extraño",
			CreatedAt:  time.Date(2024, 11, 1, 13, 0, 0, 0, time.UTC),
		}},
		UserPreferences: []entity.UserPreferences{{
			UserID:       "user-1",
			Language:     "es",
			AutoSync:     true,
			ExportFormat: "json",
			UpdatedAt:    created,
		}},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("marshal export document: %v", err)
	}

	g := goldie.New(t)
	g.Assert(t, "export_document", data)
}
