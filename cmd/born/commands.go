package main

import (
	"fmt"
	"io"

	"github.com/born-ml/tensorimpl/backend/cpu"
	"github.com/born-ml/tensorimpl/backend/webgpu"
	"github.com/born-ml/tensorimpl/loader"
	"github.com/born-ml/tensorimpl/tensor"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "born",
		Short:         "Born tensor core",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newVersionCmd(), newDevicesCmd(), newInspectCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Born tensor core %s\n", version)
		},
	}
}

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the devices tensors can be produced on",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			listDevices(cmd.OutOrStdout(), webgpu.IsAvailable())
		},
	}
}

func listDevices(w io.Writer, gpuAvailable bool) {
	fmt.Fprintf(w, "%-8s %-10s %s\n", "DEVICE", "AVAILABLE", "PRODUCER")
	fmt.Fprintf(w, "%-8s %-10t %s\n", tensor.CPU, true, cpu.New().Name())
	fmt.Fprintf(w, "%-8s %-10t %s\n", tensor.WebGPU, gpuAvailable, "WebGPU")
}

func newInspectCmd() *cobra.Command {
	var pack bool

	cmd := &cobra.Command{
		Use:   "inspect <file.safetensors>",
		Short: "Describe the tensors of a SafeTensors file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logrus.WithField("file", args[0]).Debug("loading")
			f, err := loader.LoadSafeTensors(args[0])
			if err != nil {
				return err
			}
			defer f.Release()

			var packer *cpu.Backend
			if pack {
				packer = cpu.New()
			}
			return inspect(cmd.OutOrStdout(), f, packer)
		},
	}
	cmd.Flags().BoolVar(&pack, "pack", false, "pack each tensor into the opaque CPU layout")
	return cmd
}

// inspect prints one line per tensor. With a packer, each tensor is also
// packed and the opaque result is described.
func inspect(w io.Writer, f *loader.File, packer *cpu.Backend) error {
	for k, v := range f.Metadata {
		fmt.Fprintf(w, "# %s = %s\n", k, v)
	}
	for _, n := range f.Tensors {
		fmt.Fprintf(w, "%s\t%s\n", n.Name, describe(n.Tensor))
		if packer == nil {
			continue
		}

		packed, err := packer.ToOpaque(n.Tensor)
		if err != nil {
			return fmt.Errorf("pack %q: %w", n.Name, err)
		}
		buf := *packed.UnsafeOpaqueHandle()
		fmt.Fprintf(w, "%s\t%s packed=%dB tiles=%dx%d\n",
			n.Name, describe(packed), buf.ByteSize(), buf.BlockRows(), buf.BlockCols())
		packed.Release()
	}
	return nil
}

// describe reports the metadata every implementation answers, plus strides
// when the tensor has storage.
func describe(impl tensor.Impl) string {
	s := fmt.Sprintf("kind=%s type=%s dtype=%s shape=%v numel=%d has_storage=%t",
		impl.Kind(), impl.TypeID(), impl.DType(), impl.Shape(), impl.NumElements(), impl.HasStorage())
	if impl.HasStorage() {
		s += fmt.Sprintf(" strides=%v", impl.Strides())
	}
	return s
}
