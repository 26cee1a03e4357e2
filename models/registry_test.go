package models

import "testing"

var catalogNames = []string{
	"Logistic Regression",
	"SVM",
	"Decision Tree",
	"Random Forest",
	"Extra Trees",
	"AdaBoost",
	"Gradient Boosting",
	"XGBoost",
	"LightGBM",
	"CatBoost",
	"K-Nearest Neighbors",
	"Naive Bayes",
	"Neural Network",
}

func TestRegistryCoversCatalog(t *testing.T) {
	catalog := GetModels()
	if len(catalog) != len(catalogNames) {
		t.Fatalf("GetModels has %d entries, want %d", len(catalog), len(catalogNames))
	}
	for _, name := range catalogNames {
		clf, ok := catalog[name]
		if !ok {
			t.Errorf("missing model %q", name)
			continue
		}
		if clf.Name() != name {
			t.Errorf("model %q reports Name() = %q", name, clf.Name())
		}
	}
}

func TestGridsMatchModelKeys(t *testing.T) {
	catalog := GetModels()
	grids := GetHyperparameterGrids()
	if len(grids) != len(catalog) {
		t.Fatalf("grid count = %d, model count = %d", len(grids), len(catalog))
	}
	for name := range catalog {
		if _, ok := grids[name]; !ok {
			t.Errorf("no hyperparameter grid for %q", name)
		}
	}
	for name := range grids {
		if _, ok := catalog[name]; !ok {
			t.Errorf("grid %q has no matching model", name)
		}
	}
}

func TestGridValuesAcceptedBySetParams(t *testing.T) {
	grids := GetHyperparameterGrids()
	for name, grid := range grids {
		t.Run(name, func(t *testing.T) {
			for param, values := range grid {
				for _, v := range values {
					clf := GetModels()[name]
					if err := clf.SetParams(map[string]interface{}{param: v}); err != nil {
						t.Errorf("SetParams(%s=%v): %v", param, v, err)
					}
				}
			}
		})
	}
}

func TestGetModelsReturnsFreshInstances(t *testing.T) {
	a := GetModels()["Decision Tree"]
	b := GetModels()["Decision Tree"]
	if a == b {
		t.Error("GetModels returned a shared instance")
	}
}
