package models

// GetModels returns one unfitted classifier per supported algorithm, keyed
// by display name. Every call builds fresh instances so callers can fit
// them independently.
func GetModels() map[string]Classifier {
	return map[string]Classifier{
		"Logistic Regression": NewLogisticRegression(),
		"SVM":                 NewSVC(),
		"Decision Tree":       NewDecisionTree(),
		"Random Forest":       NewRandomForest(),
		"Extra Trees":         NewExtraTrees(),
		"AdaBoost":            NewAdaBoost(),
		"Gradient Boosting":   NewGradientBoosting(),
		"XGBoost":             NewXGBoost(),
		"LightGBM":            NewLightGBM(),
		"CatBoost":            NewCatBoost(),
		"K-Nearest Neighbors": NewKNN(),
		"Naive Bayes":         NewGaussianNB(),
		"Neural Network":      NewMLP(),
	}
}

// GetHyperparameterGrids returns a search grid per algorithm, keyed by the
// same names as GetModels. Grid keys match each model's SetParams keys.
func GetHyperparameterGrids() map[string]map[string][]interface{} {
	return map[string]map[string][]interface{}{
		"Logistic Regression": {
			"C": {0.01, 0.1, 1.0, 10.0},
		},
		"SVM": {
			"C": {0.1, 1.0, 10.0},
		},
		"Decision Tree": {
			"max_depth":         {3, 5, 10, 0},
			"min_samples_split": {2, 5, 10},
		},
		"Random Forest": {
			"n_estimators": {50, 100, 200},
			"max_depth":    {5, 10, 0},
		},
		"Extra Trees": {
			"n_estimators": {50, 100, 200},
			"max_depth":    {5, 10, 0},
		},
		"AdaBoost": {
			"n_estimators":  {50, 100, 200},
			"learning_rate": {0.5, 1.0},
		},
		"Gradient Boosting": {
			"n_estimators":  {50, 100},
			"learning_rate": {0.05, 0.1, 0.2},
			"max_depth":     {2, 3, 4},
		},
		"XGBoost": {
			"n_estimators":  {50, 100},
			"learning_rate": {0.05, 0.1, 0.3},
			"max_depth":     {3, 6},
		},
		"LightGBM": {
			"n_estimators":  {50, 100},
			"learning_rate": {0.05, 0.1},
			"max_depth":     {3, 6},
		},
		"CatBoost": {
			"n_estimators":  {50, 100},
			"learning_rate": {0.05, 0.1},
			"max_depth":     {4, 6},
		},
		"K-Nearest Neighbors": {
			"n_neighbors": {3, 5, 7, 11},
		},
		"Naive Bayes": {
			"var_smoothing": {1e-9, 1e-8, 1e-7},
		},
		"Neural Network": {
			"hidden_layer_sizes": {50, 100},
			"alpha":              {0.0001, 0.001},
		},
	}
}
