package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/dartrag/internal/matrix"
)

var (
	matrixRelationships string
	matrixOut           string
	matrixSize          int
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Build a company relationship matrix",
	Long: `Validate a relationships JSON document and write the adjacency matrix as a
NumPy .npz archive holding a single "adjacency_matrix" array.

Examples:
  dartrag matrix --relationships rels.json --out data/matrix/samsung_lg`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(matrixRelationships)
		if err != nil {
			return fmt.Errorf("read relationships: %w", err)
		}
		rels, err := matrix.ValidateRelationships(raw)
		if err != nil {
			return err
		}

		size := cfg.MatrixSize
		if cmd.Flags().Changed("size") {
			size = matrixSize
		}
		m := matrix.Build(&rels, size, log)
		path, err := matrix.Save(m, matrixOut)
		if err != nil {
			return err
		}
		log.Info("saved matrix", "path", path, "size", m.Size)

		return output(map[string]any{
			"company_a": rels.CompanyA,
			"company_b": rels.CompanyB,
			"size":      m.Size,
			"path":      path,
		})
	},
}

func init() {
	matrixCmd.Flags().StringVar(&matrixRelationships, "relationships", "", "relationships JSON file")
	matrixCmd.Flags().StringVar(&matrixOut, "out", "", "output path (.npz is appended when missing)")
	matrixCmd.Flags().IntVar(&matrixSize, "size", matrix.DefaultSize, "matrix dimension")
	_ = matrixCmd.MarkFlagRequired("relationships")
	_ = matrixCmd.MarkFlagRequired("out")
}
