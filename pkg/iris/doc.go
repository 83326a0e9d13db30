// Package iris defines the iris k-means pipeline: download_file fetches the Iris dataset, k_means_iris runs the
// clustering notebook on it, and output_notebook stores the executed notebook with the file manager resource.
//
// The pipeline is described once by a Definition and run any number of times with Execute.
package iris
